package transfer

import (
	"errors"
	"sync"

	"github.com/JrMarcco/connector/pkg/message"
)

var errLinkClosed = errors.New("link closed")

type fakeLink struct {
	id string

	mu       sync.Mutex
	frames   []message.Message
	writeErr error

	closed chan struct{}
}

func (l *fakeLink) ID() string {
	return l.id
}

func (l *fakeLink) Write(msg message.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writeErr != nil {
		return l.writeErr
	}
	l.frames = append(l.frames, msg)
	return nil
}

func (l *fakeLink) Closed() <-chan struct{} {
	return l.closed
}

func (l *fakeLink) written() []message.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]message.Message(nil), l.frames...)
}

func newFakeLink(id string) *fakeLink {
	return &fakeLink{id: id, closed: make(chan struct{})}
}

type fakeService struct {
	mu           sync.Mutex
	chats        []*message.ChatMsg
	forceOffline []int64
	err          error
}

func (s *fakeService) DoChat(msg *message.ChatMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats = append(s.chats, msg)
	return s.err
}

func (s *fakeService) ForceOffline(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forceOffline = append(s.forceOffline, userID)
	return s.err
}

func (s *fakeService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.chats) + len(s.forceOffline)
}
