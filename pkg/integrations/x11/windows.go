// Package x11 enumerates visible top-level windows over the raw X11
// protocol.
package x11

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/winfind/winfind/pkg/source"
)

// Source implements source.WindowSource against an X display.
type Source struct{}

// NewSource creates an X11 window source. The X connection is opened per
// call so a crashed X server never wedges a long-lived handle.
func NewSource() *Source {
	return &Source{}
}

// Available reports whether an X display is reachable.
func (s *Source) Available() bool {
	return os.Getenv("DISPLAY") != ""
}

// ListWindows returns every mapped top-level window from _NET_CLIENT_LIST
// with its owner name, handle and process id.
func (s *Source) ListWindows(ctx context.Context) ([]source.WindowRecord, error) {
	if !s.Available() {
		return nil, fmt.Errorf("no X display: %w", source.ErrUnavailable)
	}

	client, err := newClient()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", source.ErrUnavailable)
	}
	defer client.close()

	windows, err := client.clientList()
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}

	records := make([]source.WindowRecord, 0, len(windows))
	for _, win := range windows {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}

		title := client.windowName(win)
		_, class := client.windowClass(win)
		owner := class
		if owner == "" {
			owner = title
		}
		if owner == "" && title == "" {
			continue
		}

		records = append(records, source.WindowRecord{
			OwnerName: owner,
			Handle:    int(win),
			ProcessID: int(client.windowPID(win)),
			Title:     title,
		})
	}

	return records, nil
}

type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func newClient() (*client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	c := &client{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom),
	}

	atomNames := []string{
		"_NET_CLIENT_LIST",
		"_NET_WM_NAME",
		"_NET_WM_PID",
		"WM_NAME",
		"WM_CLASS",
		"UTF8_STRING",
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, err
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) getProperty(window xproto.Window, atom xproto.Atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, window, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) clientList() ([]xproto.Window, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 1024)
	if err != nil {
		return nil, err
	}

	windows := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		windows = append(windows, xproto.Window(binary.LittleEndian.Uint32(data[i:])))
	}
	return windows, nil
}

func (c *client) windowName(window xproto.Window) string {
	data, err := c.getProperty(window, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = c.getProperty(window, c.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (c *client) windowClass(window xproto.Window) (instance, class string) {
	data, err := c.getProperty(window, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}

	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func (c *client) windowPID(window xproto.Window) uint32 {
	data, err := c.getProperty(window, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}
