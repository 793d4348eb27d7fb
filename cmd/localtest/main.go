package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wapuda/clipsaver_pro/internal/download"
	"github.com/wapuda/clipsaver_pro/internal/logx"
	"github.com/wapuda/clipsaver_pro/internal/platform"
)

// Smoke tool: runs one download end to end without Telegram or Redis.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/localtest <url>")
		return
	}
	url := os.Args[1]

	logx.Setup(logx.Config{Service: "localtest", Level: "debug", Format: "console"})

	if !platform.Supported(url, platform.DefaultAllowList) {
		fmt.Println("unsupported URL:", url)
		return
	}
	fmt.Println("platform:", platform.Detect(url).Name())

	orch, err := download.NewOrchestrator("./out", 50*1024*1024, 5*time.Minute, download.NewYTDLP())
	if err != nil {
		panic(err)
	}

	s, f := orch.Download(context.Background(), url, 0)
	if f != nil {
		fmt.Printf("failed (%s): %s\n", f.Kind, f.Message)
		fmt.Println("user message:", f.UserMessage())
		return
	}
	fmt.Println("saved:", s.FilePath)
	fmt.Printf("title=%q platform=%s duration=%ds views=%d\n", s.Title, s.SourcePlatform, s.DurationSec, s.ViewCount)
}
