// ============================================================================
// FEED: RESERVE EVENT REPLAY
// ============================================================================
//
// Decodes newline-delimited JSON reserve snapshots from a capture file (or
// any reader) and hands them to the ingest ring. This is the offline twin
// of the live venue feed: same events, same ring, so the whole downstream
// pipeline replays deterministically.
//
// Wire format, one event per line:
//
//	{"pool_id":1,"dex_id":2,"ts_ms":1700000000000,
//	 "reserve0":"0xde0b6b3a7640000","reserve1":"0x1bc16d674ec80000",
//	 "dec0":18,"dec1":18}
//
// Reserves are hex quantities, matching on-chain log payloads. Malformed
// lines are counted and skipped: one corrupt capture line must not abort a
// multi-gigabyte replay.

package feed

import (
	"bufio"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/sugawarayuuta/sonnet"

	"arbcore/debug"
	"arbcore/ring96"
	"arbcore/types"
	"arbcore/u256"
	"arbcore/utils"
)

// maxLine bounds one capture line; reserve events are tiny, so anything
// past this is corruption.
const maxLine = 4096

// event is the wire schema.
type event struct {
	PoolID   uint32 `json:"pool_id"`
	DexID    uint32 `json:"dex_id"`
	TsMS     uint64 `json:"ts_ms"`
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
	Dec0     uint8  `json:"dec0"`
	Dec1     uint8  `json:"dec1"`
}

// Replayer decodes reserve events off a reader. Single-owner; construct
// with NewReplayer.
type Replayer struct {
	sc        *bufio.Scanner
	decoded   uint64
	malformed uint64
}

// NewReplayer wraps a capture stream.
func NewReplayer(r io.Reader) *Replayer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, maxLine), maxLine)
	return &Replayer{sc: sc}
}

// Next decodes the next well-formed event into out. Returns io.EOF at end
// of stream; malformed lines are skipped, counted and dropped to fd 2,
// never surfaced as errors.
func (r *Replayer) Next(out *types.PoolReserves) error {
	for r.sc.Scan() {
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event
		if err := sonnet.Unmarshal(line, &ev); err != nil {
			r.dropMalformed(line)
			continue
		}
		r0, ok0 := u256.ParseHex([]byte(ev.Reserve0))
		r1, ok1 := u256.ParseHex([]byte(ev.Reserve1))
		if !ok0 || !ok1 {
			r.dropMalformed(line)
			continue
		}
		*out = types.PoolReserves{
			Reserve0:    r0,
			Reserve1:    r1,
			TimestampMS: ev.TsMS,
			PoolID:      ev.PoolID,
			DexID:       ev.DexID,
			Decimals0:   ev.Dec0,
			Decimals1:   ev.Dec1,
		}
		r.decoded++
		return nil
	}
	if err := r.sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

// dropMalformed counts a bad line and echoes it to the fd-2 diagnostics
// channel with its stream ordinal, so a corrupt capture is visible without
// any logger wired. The line bytes are only aliased for the write.
func (r *Replayer) dropMalformed(line []byte) {
	r.malformed++
	debug.DropMessage(
		"feed: malformed line "+utils.Itoa(int(r.decoded+r.malformed)),
		utils.B2s(line))
}

// Decoded reports events delivered so far.
func (r *Replayer) Decoded() uint64 { return r.decoded }

// Malformed reports lines skipped so far.
func (r *Replayer) Malformed() uint64 { return r.malformed }

// Pump replays the whole stream onto the ingest ring, yielding when the
// ring is full. A nonzero stop flag aborts between events. Returns the
// number of events pushed.
func (r *Replayer) Pump(ring *ring96.Ring, stop *uint32) (uint64, error) {
	var ev types.PoolReserves
	var pushed uint64
	for {
		if stop != nil && atomic.LoadUint32(stop) != 0 {
			return pushed, nil
		}
		err := r.Next(&ev)
		if err == io.EOF {
			return pushed, nil
		}
		if err != nil {
			return pushed, err
		}
		for !ring.Push(ev.Bytes()) {
			if stop != nil && atomic.LoadUint32(stop) != 0 {
				return pushed, nil
			}
			runtime.Gosched()
		}
		pushed++
	}
}
