package server

import (
	"github.com/siohaza/hyperio/internal/protocol"
)

func (s *Server) sendTo(sess *session, t protocol.MessageType, payload any) {
	data, err := sess.transport.Codec().Encode(t, payload)
	if err != nil {
		s.logger.Error("failed to encode message", "type", t, "error", err)
		return
	}
	s.send(sess, data)
}

func (s *Server) sendError(sess *session, message string) {
	s.sendTo(sess, protocol.MessageTypeError, protocol.Error{Message: message})
}

// kick tells the client why and drops the connection. The player leaves the world when the
// transport reports the disconnect.
func (s *Server) kick(sess *session, reason string) {
	sess.kicked = true
	s.sendTo(sess, protocol.MessageTypeServerMessage, protocol.ServerMessage{Text: reason})
	sess.transport.Disconnect(sess.id)
	s.logger.Info("client kicked", "conn", sess.id, "reason", reason)
}
