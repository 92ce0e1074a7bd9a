package xws

import (
	"compress/flate"
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsflate"
	"github.com/gobwas/ws/wsutil"
)

// Writer 以二进制消息写出数据。
// 客户端侧的帧由 wsutil.Writer 负责加掩码。
// 注：
//
//	Writer 不是并发安全的，同一连接只能由一个 goroutine 写。
type Writer struct {
	writer *wsutil.Writer

	compressed   bool
	messageState *wsflate.MessageState
	flateWriter  *wsflate.Writer
}

// Write 写出一条完整的消息。
func (w *Writer) Write(payload []byte) (int, error) {
	if !w.compressed {
		n, err := w.writer.Write(payload)
		if err != nil {
			return n, err
		}
		return n, w.writer.Flush()
	}

	w.flateWriter.Reset(w.writer)
	n, err := w.flateWriter.Write(payload)
	if err != nil {
		return n, err
	}
	if err = w.flateWriter.Close(); err != nil {
		return n, err
	}
	return n, w.writer.Flush()
}

func newWriter(conn net.Conn, state ws.State, compressed bool, level int) *Writer {
	w := &Writer{compressed: compressed}
	if !compressed {
		w.writer = wsutil.NewWriter(conn, state, ws.OpBinary)
		return w
	}

	w.messageState = &wsflate.MessageState{}
	w.messageState.SetCompressed(true)

	w.writer = wsutil.NewWriter(conn, state|ws.StateExtended, ws.OpBinary)
	w.writer.SetExtensions(w.messageState)

	w.flateWriter = wsflate.NewWriter(nil, func(w io.Writer) wsflate.Compressor {
		// level 由调用方保证合法，此时不会返回 error。
		fw, _ := flate.NewWriter(w, level)
		return fw
	})
	return w
}

// NewServerSideWriter 用于客户端连接，level 为 compress/flate 的压缩等级。
func NewServerSideWriter(conn net.Conn, compressed bool, level int) *Writer {
	return newWriter(conn, ws.StateServerSide, compressed, level)
}

func NewClientSideWriter(conn net.Conn, compressed bool) *Writer {
	return newWriter(conn, ws.StateClientSide, compressed, flate.BestSpeed)
}
