package client

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"bubblearena/game"
	"bubblearena/internal/errors"
)

// KeyEvent 本地方向键按下/松开
type KeyEvent struct {
	Down bool
	Dir  game.Direction
}

// ParseKeyEvent 解析一行按键输入："<mode> <dir>"
// mode: 1/press 表示按下，0/release 表示松开；dir: 0-3 或 left/right/up/down
// 示例："1 2"（按下 up）、"release left"
func ParseKeyEvent(line string) (KeyEvent, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return KeyEvent{}, errors.InvalidArgumentf("want \"<mode> <dir>\", got %q", line)
	}

	var ev KeyEvent
	switch strings.ToLower(fields[0]) {
	case "1", "press":
		ev.Down = true
	case "0", "release":
		ev.Down = false
	default:
		return KeyEvent{}, errors.InvalidArgumentf("unknown key mode %q", fields[0])
	}

	if n, err := strconv.Atoi(fields[1]); err == nil {
		ev.Dir = game.Direction(n)
	} else if d, ok := game.ParseDirection(fields[1]); ok {
		ev.Dir = d
	} else {
		return KeyEvent{}, errors.InvalidArgumentf("unknown direction %q", fields[1])
	}
	if !ev.Dir.Valid() {
		return KeyEvent{}, errors.InvalidArgumentf("direction %q out of range", fields[1])
	}
	return ev, nil
}

// ReadKeys 逐行读取按键并投递到收件箱，直到 r 结束
func ReadKeys(r io.Reader, in *Inbox) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := ParseKeyEvent(line)
		if err != nil {
			Log.Warnf("key input: %v", err)
			continue
		}
		in.OnInput(ev)
	}
	return sc.Err()
}
