package codec_test

import (
	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
)

type CodecSuite struct {
	suite.Suite
	codec codec.Codec
}

func (c *CodecSuite) TestChatMessage() {
	t := c.T()

	sendMsg := &message.ChatMsg{
		Id:         1001,
		FromId:     1,
		DestId:     2,
		MsgType:    message.ChatMsgType_TEXT,
		DestType:   message.DestType_SINGLE,
		Body:       []byte("jrmarcco"),
		CreateTime: 1700000000000,
		Version:    1,
		From:       message.Module_CLIENT,
		Dest:       message.Module_CONNECTOR,
	}

	payload, err := c.codec.Marshal(sendMsg)
	require.NoError(t, err)

	receivedMsg, err := c.codec.Unmarshal(payload)
	require.NoError(t, err)

	if diff := cmp.Diff(message.Message(sendMsg), receivedMsg, protocmp.Transform()); diff != "" {
		t.Errorf("chat message mismatch (-want +got):\n%s", diff)
	}
}

func (c *CodecSuite) TestAckMessage() {
	t := c.T()

	sendMsg := &message.AckMsg{
		Id:       1002,
		FromId:   2,
		DestId:   1,
		MsgType:  message.AckMsgType_DELIVERED,
		AckMsgId: 1001,
		From:     message.Module_CLIENT,
		Dest:     message.Module_CONNECTOR,
	}

	payload, err := c.codec.Marshal(sendMsg)
	require.NoError(t, err)

	receivedMsg, err := c.codec.Unmarshal(payload)
	require.NoError(t, err)
	assert.Equal(t, message.KindAck, receivedMsg.Kind())

	if diff := cmp.Diff(message.Message(sendMsg), receivedMsg, protocmp.Transform()); diff != "" {
		t.Errorf("ack message mismatch (-want +got):\n%s", diff)
	}
}

func (c *CodecSuite) TestInternalMessage() {
	t := c.T()

	sendMsg := &message.InternalMsg{
		Id:      1003,
		MsgType: message.InternalMsgType_USER_STATUS,
		MsgBody: "1,2,3",
		From:    message.Module_CONNECTOR,
		Dest:    message.Module_TRANSFER,
	}

	payload, err := c.codec.Marshal(sendMsg)
	require.NoError(t, err)

	receivedMsg, err := c.codec.Unmarshal(payload)
	require.NoError(t, err)
	assert.True(t, proto.Equal(sendMsg, receivedMsg))
}

func (c *CodecSuite) TestInvalidMessage() {
	t := c.T()

	payload, err := c.codec.Marshal(nil)
	assert.Error(t, err)
	assert.Nil(t, payload)

	_, err = c.codec.Unmarshal([]byte{0x7f, 0x01})
	assert.ErrorIs(t, err, codec.ErrInvalidPayload)

	_, err = c.codec.Unmarshal(nil)
	assert.ErrorIs(t, err, codec.ErrInvalidPayload)
}
