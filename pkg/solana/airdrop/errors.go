package nft_airdrop

import (
	"errors"
	"fmt"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

// PoolError is an error returned by the program's own checks.
type PoolError uint32

const (
	// Token mint to failed
	ErrTokenMintToFailed PoolError = iota + 300

	// Token set authority failed
	ErrTokenSetAuthorityFailed

	// Token transfer failed
	ErrTokenTransferFailed

	// Invalid token account
	ErrInvalidTokenAccount

	// Invalid token mint
	ErrInvalidTokenMint

	// Invalid metadata
	ErrInvalidMetadata

	// Invalid period
	ErrInvalidPeriod

	// Invalid time
	ErrInvalidTime
)

var poolErrorMessages = map[PoolError]string{
	ErrTokenMintToFailed:       "Token mint to failed",
	ErrTokenSetAuthorityFailed: "Token set authority failed",
	ErrTokenTransferFailed:     "Token transfer failed",
	ErrInvalidTokenAccount:     "Invalid token account",
	ErrInvalidTokenMint:        "Invalid token mint",
	ErrInvalidMetadata:         "Invalid metadata",
	ErrInvalidPeriod:           "Invalid period",
	ErrInvalidTime:             "Invalid Time",
}

func (e PoolError) Error() string {
	if msg, ok := poolErrorMessages[e]; ok {
		return fmt.Sprintf("%s (custom program error: 0x%x)", msg, uint32(e))
	}
	return fmt.Sprintf("unknown pool error (custom program error: 0x%x)", uint32(e))
}

// Code is the custom program error reported on chain.
func (e PoolError) Code() solana.CustomError {
	return solana.CustomError(e)
}

// Is matches the equivalent solana.CustomError, so that errors decoded from an
// RPC response compare equal to the program's own values.
func (e PoolError) Is(target error) bool {
	ce, ok := target.(solana.CustomError)
	return ok && ce == e.Code()
}

// AnchorError is an error raised by the framework's account and instruction
// validation, before any of the program's own checks run.
type AnchorError uint32

// Reference: https://github.com/coral-xyz/anchor/blob/v0.18.2/lang/src/error.rs
const (
	// 8 byte instruction identifier not provided
	ErrInstructionMissing AnchorError = 100
	// Fallback functions are not supported
	ErrInstructionFallbackNotFound AnchorError = 101
	// The program could not deserialize the given instruction
	ErrInstructionDidNotDeserialize AnchorError = 102

	// A mut constraint was violated
	ErrConstraintMut AnchorError = 140
	// A has_one constraint was violated
	ErrConstraintHasOne AnchorError = 141
	// A signer constraint was violated
	ErrConstraintSigner AnchorError = 142
	// A raw constraint was violated
	ErrConstraintRaw AnchorError = 143
	// An owner constraint was violated
	ErrConstraintOwner AnchorError = 144
	// A rent exempt constraint was violated
	ErrConstraintRentExempt AnchorError = 145
	// A seeds constraint was violated
	ErrConstraintSeeds AnchorError = 146
	// An executable constraint was violated
	ErrConstraintExecutable AnchorError = 147
	// A state constraint was violated
	ErrConstraintState AnchorError = 148
	// An associated constraint was violated
	ErrConstraintAssociated AnchorError = 149
	// An associated init constraint was violated
	ErrConstraintAssociatedInit AnchorError = 150
	// A close constraint was violated
	ErrConstraintClose AnchorError = 151
	// An address constraint was violated
	ErrConstraintAddress AnchorError = 152

	// The account discriminator was already set on this account
	ErrAccountDiscriminatorAlreadySet AnchorError = 160
	// No 8 byte discriminator was found on the account
	ErrAccountDiscriminatorNotFound AnchorError = 161
	// 8 byte discriminator did not match what was expected
	ErrAccountDiscriminatorMismatch AnchorError = 162
	// Failed to deserialize the account
	ErrAccountDidNotDeserialize AnchorError = 163
	// Failed to serialize the account
	ErrAccountDidNotSerialize AnchorError = 164
	// Not enough account keys given to the instruction
	ErrAccountNotEnoughKeys AnchorError = 165
	// The given account is not mutable
	ErrAccountNotMutable AnchorError = 166
	// The given account is not owned by the executing program
	ErrAccountNotProgramOwned AnchorError = 167
)

var anchorErrorMessages = map[AnchorError]string{
	ErrInstructionMissing:             "8 byte instruction identifier not provided",
	ErrInstructionFallbackNotFound:    "Fallback functions are not supported",
	ErrInstructionDidNotDeserialize:   "The program could not deserialize the given instruction",
	ErrConstraintMut:                  "A mut constraint was violated",
	ErrConstraintHasOne:               "A has_one constraint was violated",
	ErrConstraintSigner:               "A signer constraint was violated",
	ErrConstraintRaw:                  "A raw constraint was violated",
	ErrConstraintOwner:                "An owner constraint was violated",
	ErrConstraintRentExempt:           "A rent exempt constraint was violated",
	ErrConstraintSeeds:                "A seeds constraint was violated",
	ErrConstraintExecutable:           "An executable constraint was violated",
	ErrConstraintState:                "A state constraint was violated",
	ErrConstraintAssociated:           "An associated constraint was violated",
	ErrConstraintAssociatedInit:       "An associated init constraint was violated",
	ErrConstraintClose:                "A close constraint was violated",
	ErrConstraintAddress:              "An address constraint was violated",
	ErrAccountDiscriminatorAlreadySet: "The account discriminator was already set on this account",
	ErrAccountDiscriminatorNotFound:   "No 8 byte discriminator was found on the account",
	ErrAccountDiscriminatorMismatch:   "8 byte discriminator did not match what was expected",
	ErrAccountDidNotDeserialize:       "Failed to deserialize the account",
	ErrAccountDidNotSerialize:         "Failed to serialize the account",
	ErrAccountNotEnoughKeys:           "Not enough account keys given to the instruction",
	ErrAccountNotMutable:              "The given account is not mutable",
	ErrAccountNotProgramOwned:         "The given account is not owned by the executing program",
}

func (e AnchorError) Error() string {
	if msg, ok := anchorErrorMessages[e]; ok {
		return fmt.Sprintf("%s (custom program error: 0x%x)", msg, uint32(e))
	}
	return fmt.Sprintf("unknown framework error (custom program error: 0x%x)", uint32(e))
}

func (e AnchorError) Code() solana.CustomError {
	return solana.CustomError(e)
}

func (e AnchorError) Is(target error) bool {
	ce, ok := target.(solana.CustomError)
	return ok && ce == e.Code()
}

// GetProgramError extracts the custom error code carried by err, which may be
// a solana.TransactionError, a solana.InstructionError or a bare
// solana.CustomError, and returns the matching PoolError or AnchorError.
//
// The second return value is false when err carries no code known to the
// program.
func GetProgramError(err error) (error, bool) {
	var poolErr PoolError
	if errors.As(err, &poolErr) {
		return poolErr, true
	}

	var anchorErr AnchorError
	if errors.As(err, &anchorErr) {
		return anchorErr, true
	}

	var custom solana.CustomError
	if !errors.As(err, &custom) {
		return nil, false
	}

	if _, ok := poolErrorMessages[PoolError(custom)]; ok {
		return PoolError(custom), true
	}
	if _, ok := anchorErrorMessages[AnchorError(custom)]; ok {
		return AnchorError(custom), true
	}
	return nil, false
}
