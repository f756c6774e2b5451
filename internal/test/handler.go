package test

import (
	"github.com/quorumkey/quorumkey/pkg/party"
	"github.com/quorumkey/quorumkey/pkg/protocol"
)

// HandlerLoop pumps messages between the handler and the network until the
// protocol terminates. The result of the execution is available through
// Handler.Result.
func HandlerLoop(id party.ID, h *protocol.Handler, network *Network) {
	for {
		select {

		// outgoing messages
		case msg, ok := <-h.Listen():
			if !ok {
				// the channel was closed, indicating the protocol is done.
				<-network.Done(id)
				return
			}
			go network.Send(msg)

		// incoming messages
		case msg := <-network.Next(id):
			_ = h.Update(msg)
		}
	}
}
