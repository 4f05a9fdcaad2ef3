package nl_test

import (
	"errors"
	"testing"

	"github.com/netlinkclient/nlcore/nl"
)

func TestCompleteResolvesAutoSentinels(t *testing.T) {
	sock := nl.NewSocket()
	sock.SetCallbacks(nl.Allocate(nl.Default))

	msg := nl.AllocateSimple(1, 0)
	msg.SetPortID(nl.AutoPortID)
	msg.SetSeq(nl.AutoSeq)

	nl.Complete(sock, msg)

	h := msg.Header()
	if h.PortID == nl.AutoPortID {
		t.Error("Complete() should resolve the AutoPortID sentinel")
	}
	if h.Seq == nl.AutoSeq {
		t.Error("Complete() should resolve the AutoSeq sentinel")
	}
	if h.Flags&nl.REQUEST == 0 {
		t.Error("Complete() should set REQUEST")
	}
	if h.Flags&nl.ACK == 0 {
		t.Error("Complete() should set ACK when auto-ack is enabled")
	}
}

func TestCompleteRespectsExplicitSentinels(t *testing.T) {
	sock := nl.NewSocket()
	msg := nl.AllocateSimple(1, 0)
	msg.SetPortID(5)
	msg.SetSeq(9)

	nl.Complete(sock, msg)

	h := msg.Header()
	if h.PortID != 5 || h.Seq != 9 {
		t.Errorf("Complete() overwrote explicit values: %+v", h)
	}
}

func TestCompleteSkipsAckWhenAutoAckDisabled(t *testing.T) {
	sock := nl.NewSocket()
	sock.SetAutoAck(false)
	msg := nl.AllocateSimple(1, 0)

	nl.Complete(sock, msg)

	if msg.Header().Flags&nl.ACK != 0 {
		t.Error("Complete() should not set ACK when auto-ack is disabled")
	}
}

func TestCompleteAdoptsSocketProtocolWhenUnbound(t *testing.T) {
	sock := nl.NewSocket()
	msg := nl.AllocateSimple(1, 0)
	if msg.Protocol() != -1 {
		t.Fatal("fresh message should be unbound")
	}

	nl.Complete(sock, msg)
	if msg.Protocol() != sock.Protocol() {
		t.Errorf("Complete() did not adopt the socket's protocol: %d vs %d", msg.Protocol(), sock.Protocol())
	}
}

func TestVectorSendAbortsOnNonProceedMsgOut(t *testing.T) {
	sock := nl.NewSocket()
	sock.Callbacks().Set(nl.EvMsgOut, nl.Custom, func(msg *nl.Message, arg interface{}) (nl.Disposition, error) {
		return nl.Skip, nil
	}, nil)

	msg := nl.AllocateSimple(1, 0)
	err := nl.VectorSend(sock, msg)
	if err == nil {
		t.Fatal("VectorSend should abort when MSG_OUT returns non-Proceed")
	}
	var aborted nl.ErrSendAborted
	if !errors.As(err, &aborted) {
		t.Errorf("err = %v, want ErrSendAborted", err)
	}
	if aborted.Disposition != nl.Skip {
		t.Errorf("aborted.Disposition = %v, want Skip", aborted.Disposition)
	}
}

func TestVectorSendPropagatesMsgOutHookError(t *testing.T) {
	sock := nl.NewSocket()
	sentinel := errors.New("boom")
	sock.Callbacks().Set(nl.EvMsgOut, nl.Custom, func(msg *nl.Message, arg interface{}) (nl.Disposition, error) {
		return nl.Proceed, sentinel
	}, nil)

	msg := nl.AllocateSimple(1, 0)
	if err := nl.VectorSend(sock, msg); !errors.Is(err, sentinel) {
		t.Errorf("VectorSend err = %v, want %v", err, sentinel)
	}
}
