package domain

// Audit records kept for operators and governance. Each log is bounded by a
// retention cap enforced by the repository on insert.

const (
	DepositReceiptRetention   = 512
	ChallengeRecordRetention  = 256
	SlashRecordRetention      = 512
	ClaimReceiptRetention     = 512
	SettlementRecordRetention = 512
)

type DepositReceipt struct {
	Seq              uint64 `badgerhold:"key"`
	Asset            string
	Nonce            uint64
	User             string
	Amount           uint64
	Relayer          string
	HeaderHash       [32]byte
	Commitment       [32]byte
	ProofFingerprint [32]byte
	BundleRelayers   []string
	RecordedAt       int64
}

type ChallengeRecord struct {
	Seq          uint64 `badgerhold:"key"`
	Asset        string
	Commitment   [32]byte
	Challenger   string
	ChallengedAt int64
}

type SlashRecord struct {
	Seq           uint64 `badgerhold:"key"`
	Relayer       string
	Asset         string
	Amount        uint64
	RemainingBond uint64
	Reason        string
	OccurredAt    int64
}

type ClaimReceipt struct {
	Seq         uint64 `badgerhold:"key"`
	Id          string
	Relayer     string
	Amount      uint64
	ApprovalKey string
	ClaimedAt   int64
}

type SettlementRecord struct {
	Seq              uint64 `badgerhold:"key"`
	Asset            string
	Commitment       [32]byte
	Relayer          string
	SettlementChain  string
	ProofHash        [32]byte
	SettlementHeight uint64
	RecordedAt       int64
}
