package datarecording

import (
	"github.com/rs/xid"
	"github.com/sarchlab/streamsim/fabric"
	"github.com/sarchlab/streamsim/packetformer"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// Table names used by PacketHook.
const (
	PacketCompleteTable = "packet_complete"
	PacketStartTable    = "packet_start"
	TransferOutTable    = "transfer_out"
)

type packetEntry struct {
	ID        string
	Time      float64
	Component string
	Stream    int
	Length    int
}

type transferEntry struct {
	ID        string
	Time      float64
	Component string
	Stream    uint32
	NumItems  int
	User      uint64
	Last      bool
}

// PacketHook records packet-former and fabric events. Attach it to packet
// formers for packet records and to fabrics for delivered transfers.
type PacketHook struct {
	recorder   DataRecorder
	timeTeller sim.TimeTeller
}

// NewPacketHook creates the tables of the hook in the recorder.
func NewPacketHook(
	recorder DataRecorder,
	timeTeller sim.TimeTeller,
) *PacketHook {
	recorder.CreateTable(PacketCompleteTable, packetEntry{})
	recorder.CreateTable(PacketStartTable, packetEntry{})
	recorder.CreateTable(TransferOutTable, transferEntry{})

	return &PacketHook{
		recorder:   recorder,
		timeTeller: timeTeller,
	}
}

// Func records the event.
func (h *PacketHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case packetformer.HookPosPacketComplete:
		h.recordPacket(PacketCompleteTable, ctx)
	case packetformer.HookPosPacketStart:
		h.recordPacket(PacketStartTable, ctx)
	case fabric.HookPosTransferOut:
		h.recordTransfer(ctx)
	}
}

func (h *PacketHook) recordPacket(tableName string, ctx sim.HookCtx) {
	record := ctx.Item.(packetformer.PacketRecord)

	h.recorder.InsertData(tableName, packetEntry{
		ID:        xid.New().String(),
		Time:      float64(h.timeTeller.CurrentTime()),
		Component: domainName(ctx),
		Stream:    record.Stream,
		Length:    record.Length,
	})
}

func (h *PacketHook) recordTransfer(ctx sim.HookCtx) {
	t := ctx.Item.(stream.Transfer)

	h.recorder.InsertData(TransferOutTable, transferEntry{
		ID:        xid.New().String(),
		Time:      float64(h.timeTeller.CurrentTime()),
		Component: domainName(ctx),
		Stream:    t.ID,
		NumItems:  t.NumDataItems(),
		User:      t.User,
		Last:      t.Last,
	})
}

func domainName(ctx sim.HookCtx) string {
	if named, ok := ctx.Domain.(sim.Named); ok {
		return named.Name()
	}

	return ""
}
