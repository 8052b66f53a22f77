package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/chat"
	"GymChat/internal/pkg/logger"
)

const usage = `commands:
  /list                 列出联系人
  /open <member_7>      打开与某人的会话
  /file <path> [text]   发送附件
  /quit                 退出
  其他输入作为文本发送`

func main() {
	if err := config.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	cfg := config.Cfg.Client
	logger.InitClientLogger(config.Cfg.Logger.Level)

	blob, err := os.ReadFile(cfg.SessionFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read session:", err)
		os.Exit(1)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rest := chat.NewRESTClient(cfg.BaseURL, timeout)

	view := chat.NewView(chat.ViewOptions{
		Directory: chat.NewDirectory(rest),
		History:   chat.NewHistoryStore(rest),
		Uploader:  chat.NewUploader(rest),
		Channel:   chat.NewConnection(cfg.WSURL, cfg.Token),
		Warn: func(err error) {
			fmt.Fprintln(os.Stderr, "warn:", err)
		},
		OnChange: printTimeline,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = view.Mount(ctx, blob); err != nil {
		fmt.Fprintln(os.Stderr, "failed to start chat:", err)
		os.Exit(1)
	}
	defer func() {
		if err := view.Unmount(); err != nil {
			log.Warn("unmount failed", "err", err)
		}
	}()

	me := view.Identity()
	fmt.Printf("signed in as %s (%s #%d)\n%s\n", me.DisplayName, me.Role, me.ID, usage)
	printParticipants(view.Participants())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handleLine(ctx, view, strings.TrimSpace(line)); quit {
				return
			}
		}
	}
}

func handleLine(ctx context.Context, view *chat.View, line string) bool {
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit":
		return true
	case "/help":
		fmt.Println(usage)
	case "/list":
		printParticipants(view.RefreshDirectory(ctx))
	case "/open":
		ref, err := chat.ParseRef(strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
		if err = view.Select(ctx, ref); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	case "/file":
		path, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if path == "" {
			fmt.Fprintln(os.Stderr, "usage: /file <path> [text]")
			return false
		}
		file, closer, err := chat.OpenAttachment(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
		defer func() { _ = closer.Close() }()
		send(ctx, view, strings.TrimSpace(text), file)
	default:
		send(ctx, view, line, nil)
	}
	return false
}

func send(ctx context.Context, view *chat.View, text string, file *chat.Attachment) {
	if _, err := view.Send(ctx, text, file); err != nil {
		if errors.Is(err, chat.ErrComposeNoReceiver) {
			fmt.Fprintln(os.Stderr, "select someone with /open first")
			return
		}
		fmt.Fprintln(os.Stderr, err)
	}
}

func printParticipants(list []chat.Participant) {
	for _, p := range list {
		fmt.Printf("  %-12s %s (%s)\n", p.UniqueKey(), p.DisplayName, p.Role)
	}
}

// printTimeline 每次变化重绘会话
func printTimeline(msgs []chat.Message) {
	fmt.Println("----")
	for _, m := range msgs {
		line := m.Text
		if m.AttachmentURL != "" {
			line = strings.TrimSpace(line + " [" + m.AttachmentURL + "]")
		}
		fmt.Printf("%s %s: %s\n", m.Timestamp.Local().Format("15:04"), m.SenderName, line)
	}
}
