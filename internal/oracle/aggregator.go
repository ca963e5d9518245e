package oracle

import (
	"fmt"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/fixedpoint"
)

// aggregatorName is the discriminator name for aggregator accounts.
const aggregatorName = "AggregatorAccountData"

// RoundResult is one completed (or in-flight) oracle round.
type RoundResult struct {
	NumSuccess    uint32
	NumError      uint32
	OpenSlot      uint64
	OpenTimestamp int64 // unix seconds
	Result        fixedpoint.Decimal
	StdDeviation  fixedpoint.Decimal
}

// AggregatorAccount is a data feed: a job definition plus its latest
// confirmed round.
type AggregatorAccount struct {
	Name                   string
	Queue                  domain.Address
	OracleRequestBatchSize uint32
	MinOracleResults       uint32
	MinUpdateDelaySeconds  uint32
	LatestRound            RoundResult
}

// DecodeAggregator parses an aggregator account.
//
// Layout after the discriminator (little-endian):
//
//	name[32] | queue[32] | batchSize u32 | minResults u32 | minDelay u32 |
//	latestRound{numSuccess u32 | numError u32 | openSlot u64 |
//	            openTimestamp i64 | result dec20 | stdDeviation dec20}
func DecodeAggregator(buf []byte) (*AggregatorAccount, error) {
	body, err := checkDiscriminator(buf, aggregatorName)
	if err != nil {
		return nil, err
	}

	r := newByteReader(body)
	agg := &AggregatorAccount{
		Name:                   r.name(32),
		Queue:                  r.address(),
		OracleRequestBatchSize: r.uint32(),
		MinOracleResults:       r.uint32(),
		MinUpdateDelaySeconds:  r.uint32(),
	}
	round, err := decodeRound(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", aggregatorName, err)
	}
	agg.LatestRound = round

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", aggregatorName, r.err)
	}
	return agg, nil
}

func decodeRound(r *byteReader) (RoundResult, error) {
	round := RoundResult{
		NumSuccess:    r.uint32(),
		NumError:      r.uint32(),
		OpenSlot:      r.uint64(),
		OpenTimestamp: r.int64(),
	}
	for _, dst := range []*fixedpoint.Decimal{&round.Result, &round.StdDeviation} {
		raw := r.take(fixedpoint.EncodedLen)
		if r.err != nil {
			return RoundResult{}, r.err
		}
		dec, err := fixedpoint.Decode(raw)
		if err != nil {
			return RoundResult{}, err
		}
		*dst = dec
	}
	return round, nil
}
