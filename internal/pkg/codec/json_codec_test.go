package codec_test

import (
	"testing"

	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestJsonCodec(t *testing.T) {
	t.Parallel()

	jsonCodec := codec.NewJsonCodec()
	assert.Equal(t, "json", jsonCodec.Name())

	suite.Run(t, &CodecSuite{codec: jsonCodec})
}

func TestJsonCodec_Envelope(t *testing.T) {
	t.Parallel()

	jsonCodec := codec.NewJsonCodec()

	msg, err := jsonCodec.Unmarshal([]byte(`{"kind":"chat","payload":{"id":7,"dest_id":2,"from":2,"dest":0}}`))
	require.NoError(t, err)

	chat, ok := msg.(*message.ChatMsg)
	require.True(t, ok)
	assert.EqualValues(t, 7, chat.Id)
	assert.EqualValues(t, 2, chat.DestId)
	assert.Equal(t, message.Module_CLIENT, chat.Origin())
	assert.Equal(t, message.Module_CONNECTOR, chat.Destination())

	// 枚举值同样可以使用名称，未知字段被忽略。
	msg, err = jsonCodec.Unmarshal([]byte(`{"kind":"ack","payload":{"ack_msg_id":"7","msg_type":"READ","from":"CLIENT","trace":"x"}}`))
	require.NoError(t, err)

	ack, ok := msg.(*message.AckMsg)
	require.True(t, ok)
	assert.EqualValues(t, 7, ack.GetAckMsgId())
	assert.Equal(t, message.AckMsgType_READ, ack.GetMsgType())
	assert.Equal(t, message.Module_CLIENT, ack.Origin())

	tcs := []struct {
		name string
		data string
	}{
		{name: "unknown kind", data: `{"kind":"push","payload":{}}`},
		{name: "missing payload", data: `{"kind":"ack"}`},
		{name: "not json", data: `chat`},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jsonCodec.Unmarshal([]byte(tc.data))
			assert.ErrorIs(t, err, codec.ErrInvalidPayload)
		})
	}
}
