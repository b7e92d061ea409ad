package ports

// DepositProof carries the opaque light-client material attached to a
// deposit attestation. Header and proof verification internals live outside
// this module.
type DepositProof struct {
	HeaderHash [32]byte
	Header     []byte
	Proof      []byte
}

type ProofVerifier interface {
	VerifyDeposit(asset, user string, amount uint64, proof DepositProof) bool
}
