package probe

import (
	"testing"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

func TestClassifyTCPReply_SYN(t *testing.T) {
	cases := []struct {
		name   string
		reply  *listener.Reply
		expect model.PortStatus
	}{
		{"synack open", &listener.Reply{TCPFlags: netraw.FlagSYN | netraw.FlagACK}, model.StatusOpen},
		{"rst closed", &listener.Reply{TCPFlags: netraw.FlagRST}, model.StatusClosed},
		{"timeout filtered", nil, model.StatusFiltered},
		{"icmp host unreachable filtered", &listener.Reply{IsICMP: true, ICMPType: 3, ICMPCode: 1}, model.StatusFiltered},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyTCPReply(c.reply, synRules)
			if got != c.expect {
				t.Fatalf("got %v, want %v", got, c.expect)
			}
		})
	}
}

func TestClassifyTCPReply_FinNullXmas(t *testing.T) {
	cases := []struct {
		name   string
		reply  *listener.Reply
		expect model.PortStatus
	}{
		{"rst closed", &listener.Reply{TCPFlags: netraw.FlagRST}, model.StatusClosed},
		{"silence open-filtered", nil, model.StatusOpenFiltered},
		{"icmp filtered", &listener.Reply{IsICMP: true, ICMPType: 3, ICMPCode: 3}, model.StatusFiltered},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyTCPReply(c.reply, closedOpenFilteredRules)
			if got != c.expect {
				t.Fatalf("got %v, want %v", got, c.expect)
			}
		})
	}
}

func TestClassifyTCPReply_ACK(t *testing.T) {
	cases := []struct {
		name   string
		reply  *listener.Reply
		expect model.PortStatus
	}{
		{"rst unfiltered", &listener.Reply{TCPFlags: netraw.FlagRST}, model.StatusUnfiltered},
		{"timeout filtered", nil, model.StatusFiltered},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyTCPReply(c.reply, ackRules)
			if got != c.expect {
				t.Fatalf("got %v, want %v", got, c.expect)
			}
		})
	}
}
