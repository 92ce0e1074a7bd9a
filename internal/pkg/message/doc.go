// Package message 提供了客户端消息处理的接口定义。
//
// 实现部分分为上行消息和下行消息两个部分：
//
//	Package upstream 处理客户端发送给 connector 的消息。
//	Package downstream 处理 connector 推送给客户端的消息。
package message
