// Package xws 封装 gobwas/ws 的消息读写，同时用于客户端连接 ( 服务端侧 ) 和 transfer 上行连接 ( 客户端侧 )。
package xws

import (
	"compress/flate"
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsflate"
	"github.com/gobwas/ws/wsutil"
)

// Reader 读取完整的 WebSocket 消息。
// 控制帧在读取过程中被处理掉，不会返回给调用方。
type Reader struct {
	reader *wsutil.Reader

	messageState *wsflate.MessageState
	flateReader  *wsflate.Reader

	controlHandler wsutil.FrameHandlerFunc
}

// Read 读取下一条数据消息。
// 对端关闭连接时返回 wsutil.ClosedError。
func (r *Reader) Read() ([]byte, error) {
	for {
		header, err := r.reader.NextFrame()
		if err != nil {
			return nil, err
		}

		if header.OpCode.IsControl() {
			if err := r.controlHandler(header, r.reader); err != nil {
				return nil, err
			}
			continue
		}

		if r.messageState.IsCompressed() {
			r.flateReader.Reset(r.reader)
			return io.ReadAll(r.flateReader)
		}
		return io.ReadAll(r.reader)
	}
}

func newReader(conn net.Conn, state ws.State) *Reader {
	messageState := &wsflate.MessageState{}
	controlHandler := wsutil.ControlFrameHandler(conn, state)

	return &Reader{
		reader: &wsutil.Reader{
			Source:         conn,
			State:          state | ws.StateExtended,
			Extensions:     []wsutil.RecvExtension{messageState},
			OnIntermediate: controlHandler,
		},
		messageState: messageState,
		flateReader: wsflate.NewReader(nil, func(r io.Reader) wsflate.Decompressor {
			return flate.NewReader(r)
		}),
		controlHandler: controlHandler,
	}
}

func NewServerSideReader(conn net.Conn) *Reader {
	return newReader(conn, ws.StateServerSide)
}

// NewClientSideReader 用于 connector 主动发起的连接。
func NewClientSideReader(conn net.Conn) *Reader {
	return newReader(conn, ws.StateClientSide)
}
