package client

import (
	"context"
	"time"
)

// Run 固定步长推进 Tick，直到 ctx 结束；与渲染帧率无关
func (g *Game) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second / TicksPerSecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick()
		}
	}
}
