package main

import (
	"context"
	"io"
	"strconv"
	"sync"

	ms "github.com/cmacro/wsrecv"
)

// NewEchoSections returns a SessionsHandler that echoes every message it
// receives back to its sender verbatim, for driving the Autobahn testsuite
// against this module's receiver.
func NewEchoSections(log ms.Logger) *Sections {
	return &Sections{
		log:   log,
		items: make(map[int64]*Client),
		Mutex: &sync.Mutex{},
	}
}

type Client struct {
	id     int64
	log    ms.Logger
	writer ms.SendFunc
	ctx    context.Context
	cancel func()
}

type Sections struct {
	log ms.Logger
	*sync.Mutex

	maxid int64
	items map[int64]*Client
}

func (s *Sections) Connect(ctx context.Context, w ms.SendFunc, c func()) (ms.SessionHandler, error) {
	s.Lock()
	s.maxid++
	nid := s.maxid
	section := &Client{id: nid, writer: w, ctx: ctx, cancel: c, log: s.log.Sub(strconv.FormatInt(nid, 10))}
	s.items[nid] = section
	s.Unlock()

	return section, nil
}

func (s *Sections) Close(section ms.SessionHandler) error {
	id := section.GetId()
	s.Lock()
	delete(s.items, id)
	s.Unlock()
	section.Close()
	return nil
}

func (c *Client) Close() {
	c.cancel()
}

// ReadDump echoes the message straight back, as Autobahn's fuzzing client
// expects of a conformant echo endpoint.
func (c *Client) ReadDump(r io.Reader, isText bool) error {
	return c.writer(r, isText)
}

func (c *Client) GetId() int64 {
	return c.id
}
