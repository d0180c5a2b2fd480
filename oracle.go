package liquiditybook

import (
	"math/bits"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// oracle is a fixed-capacity ring of cumulative samples, written at most
// once per second and read back with linear interpolation. Capacity starts
// at zero and only ever grows.
type oracle struct {
	samples    []types.OracleSample
	activeSize uint16
	newest     int
}

func (o *oracle) size() uint16 { return uint16(len(o.samples)) }

func (o *oracle) oldestIndex() int {
	if o.activeSize < o.size() {
		return 0
	}
	return (o.newest + 1) % int(o.size())
}

// at returns the i-th stored sample in chronological order.
func (o *oracle) at(i int) types.OracleSample {
	return o.samples[(o.oldestIndex()+i)%int(o.size())]
}

func (o *oracle) increaseLength(n uint16) {
	grown := make([]types.OracleSample, n)
	for i := 0; i < int(o.activeSize); i++ {
		grown[i] = o.at(i)
	}
	o.samples = grown
	if o.activeSize > 0 {
		o.newest = int(o.activeSize) - 1
	} else {
		o.newest = 0
	}
}

// update extends the cumulative counters to now. Same-second updates add
// nothing (zero elapsed time) and are skipped, so each stored sample has a
// unique timestamp.
func (o *oracle) update(now uint64, activeID uint32, volatility uint32, binsCrossed uint64) {
	if o.size() == 0 {
		return
	}

	if o.activeSize == 0 {
		o.samples[0] = types.OracleSample{Timestamp: now}
		o.activeSize = 1
		o.newest = 0
		return
	}

	last := o.samples[o.newest]
	if now <= last.Timestamp {
		return
	}
	dt := now - last.Timestamp

	next := types.OracleSample{
		Timestamp:            now,
		CumulativeID:         last.CumulativeID + uint64(activeID)*dt,
		CumulativeVolatility: last.CumulativeVolatility + uint64(volatility)*dt,
		CumulativeBinCrossed: last.CumulativeBinCrossed + binsCrossed*dt,
	}

	o.newest = (o.newest + 1) % int(o.size())
	o.samples[o.newest] = next
	if o.activeSize < o.size() {
		o.activeSize++
	}
}

// sampleAt reconstructs the cumulative counters at timestamp t. Timestamps
// before the recorded window return the zero sample; timestamps at or past
// the newest sample return the newest.
func (o *oracle) sampleAt(t uint64) types.OracleSample {
	if o.activeSize == 0 {
		return types.OracleSample{}
	}

	oldest := o.at(0)
	if t < oldest.Timestamp {
		return types.OracleSample{}
	}
	newest := o.samples[o.newest]
	if t >= newest.Timestamp {
		return newest
	}

	// greatest stored sample at or before t
	lo, hi := 0, int(o.activeSize)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if o.at(mid).Timestamp <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	prev, next := o.at(lo), o.at(lo+1)
	if prev.Timestamp == t {
		return prev
	}

	span := next.Timestamp - prev.Timestamp
	elapsed := t - prev.Timestamp
	// (b-a)*elapsed can exceed 64 bits over long gaps, so the product is
	// taken in 128 bits; elapsed < span keeps the quotient within 64 bits
	lerp := func(a, b uint64) uint64 {
		hi, lo := bits.Mul64(b-a, elapsed)
		q, _ := bits.Div64(hi, lo, span)
		return a + q
	}
	return types.OracleSample{
		Timestamp:            t,
		CumulativeID:         lerp(prev.CumulativeID, next.CumulativeID),
		CumulativeVolatility: lerp(prev.CumulativeVolatility, next.CumulativeVolatility),
		CumulativeBinCrossed: lerp(prev.CumulativeBinCrossed, next.CumulativeBinCrossed),
	}
}

// updateOracle writes the current swap's sample; called with the pair's
// guard held, after the fee state has been committed.
func (p *Pair) updateOracle(binsCrossed uint64) {
	p.oracle.update(p.now(), p.activeID, p.fee.VolatilityAccumulator, binsCrossed)
}

// IncreaseOracleLength grows the oracle's sample capacity. Capacity is
// monotone: n must exceed the current size and stay within the protocol
// maximum.
func (p *Pair) IncreaseOracleLength(n uint16) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	if uint32(p.oracle.size()) >= constants.OracleMaxSize {
		return ErrOracleMaxSize
	}
	if n <= p.oracle.size() {
		return ErrOracleInvalidLength
	}
	p.oracle.increaseLength(n)

	p.log.Debug().Uint16("size", n).Msg("oracle length increased")
	return nil
}

// GetOracleParameters describes the ring buffer's occupancy and window.
func (p *Pair) GetOracleParameters() types.OracleParameters {
	params := types.OracleParameters{
		SampleLifetime: 1,
		Size:           p.oracle.size(),
		ActiveSize:     p.oracle.activeSize,
	}
	if p.oracle.activeSize > 0 {
		params.LastUpdated = p.oracle.samples[p.oracle.newest].Timestamp
		params.FirstTimestamp = p.oracle.at(0).Timestamp
	}
	return params
}

// GetOracleSampleAt returns the cumulative counters interpolated at the
// requested timestamp; a timestamp with no prior sample returns the
// all-zero sample.
func (p *Pair) GetOracleSampleAt(t uint64) types.OracleSample {
	return p.oracle.sampleAt(t)
}
