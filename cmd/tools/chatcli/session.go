package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/labsense/backend/internal/export"
	"github.com/labsense/backend/internal/model/chat"
	"github.com/labsense/backend/internal/service/assistant"
	chatservice "github.com/labsense/backend/internal/service/chat"
)

type options struct {
	delay time.Duration
	loc   *time.Location
}

type styles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	clock     lipgloss.Style
	attach    lipgloss.Style
	muted     lipgloss.Style
	errStyle  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		clock:     r.NewStyle().Foreground(lipgloss.Color("243")),
		attach:    r.NewStyle().Foreground(lipgloss.Color("212")).Italic(true),
		muted:     r.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// console serialises writes from the input loop and the event relay.
type console struct {
	mu  sync.Mutex
	out io.Writer
	st  styles
	loc *time.Location
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) message(msg chat.Message) {
	label := c.st.assistant.Render("LabSense")
	if msg.Sender == chat.SenderUser {
		label = c.st.user.Render("You")
	}
	line := fmt.Sprintf("%s %s", c.st.clock.Render("["+chat.FormatTimestamp(msg, c.loc)+"]"), label)
	if msg.Content != "" {
		line += ": " + msg.Content
	}
	if msg.HasAttachment() {
		line += "\n  " + c.st.attach.Render(fmt.Sprintf("%s attachment: %s", msg.Attachment.Kind(), msg.Attachment.Name))
	}
	c.printf("%s\n", line)
}

func (c *console) muted(text string) {
	c.printf("%s\n", c.st.muted.Render(text))
}

func (c *console) fail(err error) {
	c.printf("%s\n", c.st.errStyle.Render("error: "+err.Error()))
}

func run(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	responder, err := assistant.NewService(ctx, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to initialise assistant: %w", err)
	}

	svc := chatservice.NewService(
		chatservice.WithReplyDelay(opts.delay),
		chatservice.WithResponder(responder),
	)
	defer func() { _ = svc.Close() }()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}

	snapshot, err := svc.Snapshot(ctx, session.ID)
	if err != nil {
		return err
	}

	con := &console{out: out, st: newStyles(out), loc: opts.loc}
	for _, msg := range snapshot.Messages {
		con.message(msg)
	}
	con.muted(snapshot.Disclaimer)

	events, unsubscribe, err := svc.Subscribe(ctx, session.ID)
	if err != nil {
		return err
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		for event := range events {
			switch {
			case event.Message != nil:
				con.message(*event.Message)
			case event.Pending != nil:
				con.muted(fmt.Sprintf("Staged %s %q. Press enter to send.", event.Pending.Kind(), event.Pending.Name))
			}
		}
	}()
	defer func() {
		unsubscribe()
		<-relayDone
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, open := <-lines:
			if !open {
				return waitForReplies(ctx, svc, session.ID)
			}
			if quit := handleLine(ctx, svc, session.ID, line, con); quit {
				return nil
			}
		}
	}
}

// handleLine executes one input line and reports whether the user asked to quit.
func handleLine(ctx context.Context, svc *chatservice.Service, sessionID, line string, con *console) bool {
	trimmed := strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit":
		return true
	case "/attach":
		att, err := attachmentFromPath(arg)
		if err != nil {
			con.fail(err)
			return false
		}
		if err := svc.SelectAttachment(ctx, sessionID, att); err != nil {
			con.fail(err)
		}
	case "/clear":
		if err := svc.ClearAttachment(ctx, sessionID); err != nil {
			con.fail(err)
			return false
		}
		con.muted("Attachment cleared.")
	case "/export":
		if err := exportTranscript(ctx, svc, sessionID, arg, con); err != nil {
			con.fail(err)
		}
	default:
		_, ok, err := svc.Send(ctx, sessionID, line)
		if err != nil {
			con.fail(err)
		} else if !ok {
			con.muted("Type a message or /attach a file first.")
		}
	}
	return false
}

func attachmentFromPath(path string) (*chat.Attachment, error) {
	if path == "" {
		return nil, fmt.Errorf("usage: /attach <path>")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		defer f.Close()
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		mimeType = http.DetectContentType(head[:n])
	}

	att := &chat.Attachment{Name: filepath.Base(path), MimeType: mimeType}
	if !chat.Accepts(mimeType) {
		return nil, fmt.Errorf("%s is %s; only PDF and image files are accepted", att.Name, mimeType)
	}
	return att, nil
}

func exportTranscript(ctx context.Context, svc *chatservice.Service, sessionID, format string, con *console) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	snapshot, err := svc.Snapshot(ctx, sessionID)
	if err != nil {
		return err
	}

	con.mu.Lock()
	defer con.mu.Unlock()
	return exporter.Export(export.NewTranscript(snapshot, con.loc), con.out)
}

// waitForReplies blocks until every outstanding reply has been delivered.
func waitForReplies(ctx context.Context, svc *chatservice.Service, sessionID string) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		snapshot, err := svc.Snapshot(ctx, sessionID)
		if err != nil {
			return err
		}
		if snapshot.AwaitingReplies == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
