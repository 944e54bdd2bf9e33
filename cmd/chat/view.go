package main

import (
	"fmt"
	"io"
	"sync"

	"go-chat-client/internal/model"
	"go-chat-client/internal/session"
)

const termWidth = 80

// termView is a throwaway terminal viewport. Heights are rendered line
// counts, so messages contribute according to how far they wrap, and
// the prepend anchor math in the session stays exact.
type termView struct {
	mu      sync.Mutex
	out     io.Writer
	sess    *session.Session
	selfID  string
	printed int
}

func newTermView(out io.Writer) *termView {
	return &termView{out: out}
}

func (v *termView) attach(s *session.Session, selfID string) {
	v.mu.Lock()
	v.sess = s
	v.selfID = selfID
	v.printed = 0
	v.mu.Unlock()
	if s != nil {
		v.renderAll()
	}
}

func (v *termView) ContentHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sess == nil {
		return 0
	}

	h := 0
	for _, m := range v.sess.Messages() {
		h += lineCount(renderLine(m, v.selfID, v.sess))
	}
	return h
}

// ScrollTo is a no-op on a teletype; the anchor contract is exercised
// by the engine regardless.
func (v *termView) ScrollTo(offset int) {}

// ScrollToBottom prints whatever arrived since the last render.
func (v *termView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderTailLocked()
}

func (v *termView) renderAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printed = 0
	v.renderTailLocked()
}

func (v *termView) renderTailLocked() {
	if v.sess == nil {
		return
	}
	msgs := v.sess.Messages()
	for ; v.printed < len(msgs); v.printed++ {
		fmt.Fprintln(v.out, renderLine(msgs[v.printed], v.selfID, v.sess))
	}
	if ind := v.sess.TypingIndicator(); ind != "" {
		fmt.Fprintln(v.out, "  "+ind)
	}
}

func renderLine(m model.Message, selfID string, s *session.Session) string {
	who := "You"
	if m.SenderID != selfID {
		who = s.MemberName(m.SenderID)
	}

	switch {
	case m.Deleted():
		return fmt.Sprintf("[%s] (message deleted)", who)
	case m.Kind == model.KindNotice:
		return "-- " + m.Content + " --"
	case m.Kind == model.KindFile:
		return fmt.Sprintf("[%s] file: %s", who, m.Content)
	case m.Kind == model.KindImage:
		return fmt.Sprintf("[%s] image: %s", who, m.Content)
	default:
		return fmt.Sprintf("[%s] %s", who, m.Content)
	}
}

func lineCount(s string) int {
	return 1 + len(s)/termWidth
}
