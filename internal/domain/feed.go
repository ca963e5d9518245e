package domain

// Feed is a watched aggregator feed.
// Corresponds to the feeds table in PostgreSQL.
type Feed struct {
	Pubkey    string // PRIMARY KEY, base58 aggregator address
	Name      string // on-chain feed name
	Queue     string // base58 queue address
	AddedAt   int64  // Unix timestamp in milliseconds
	CreatedAt int64  // record creation timestamp (ms)
}

// Round is one recorded oracle round for a feed.
// Corresponds to the rounds table in ClickHouse.
type Round struct {
	FeedPubkey  string  // base58 aggregator address
	OpenSlot    uint64  // slot the round opened in
	TimestampMs int64   // round open time in milliseconds
	Mantissa    string  // exact result mantissa, decimal string
	Scale       uint32  // result scale
	Value       float64 // convenience column; Mantissa/Scale is authoritative
	StdDev      float64
	NumSuccess  uint32
	NumError    uint32
}
