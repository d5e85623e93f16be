package market

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// mintTokenIDArg is the position of the token id among the arguments of
// the first event emitted by mintToken (Transfer(from, to, tokenId)).
//
// This follows the token contract's emission order: the first log of a
// mintToken receipt is the ERC-721 Transfer. If the contract ever emits a
// different event first, extraction fails with ErrMintEventMalformed
// rather than guessing at another log.
const mintTokenIDArg = 2

// TokenIDFromReceipt returns the third positional argument of the first
// log in receipt, decoded against contractABI.
func TokenIDFromReceipt(contractABI abi.ABI, receipt *types.Receipt) (*big.Int, error) {
	if receipt == nil || len(receipt.Logs) == 0 || receipt.Logs[0] == nil {
		return nil, ErrMintEventMissing
	}

	args, err := decodeLogArgs(contractABI, receipt.Logs[0])
	if err != nil {
		return nil, err
	}
	if len(args) <= mintTokenIDArg {
		return nil, fmt.Errorf("%w: event has %d arguments", ErrMintEventMalformed, len(args))
	}

	tokenID, ok := args[mintTokenIDArg].(*big.Int)
	if !ok || tokenID == nil {
		return nil, fmt.Errorf("%w: argument %d is %T, not an integer", ErrMintEventMalformed, mintTokenIDArg, args[mintTokenIDArg])
	}
	return new(big.Int).Set(tokenID), nil
}

// decodeLogArgs decodes a log into its event arguments in declaration
// order, merging indexed (topic) and non-indexed (data) values.
func decodeLogArgs(contractABI abi.ABI, lg *types.Log) ([]interface{}, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("%w: anonymous log", ErrMintEventMalformed)
	}

	event, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: unknown event %s", ErrMintEventMalformed, lg.Topics[0].Hex())
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	values := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(values, indexed, lg.Topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: %s topics: %v", ErrMintEventMalformed, event.Name, err)
	}
	if err := event.Inputs.UnpackIntoMap(values, lg.Data); err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrMintEventMalformed, event.Name, err)
	}

	args := make([]interface{}, len(event.Inputs))
	for i, input := range event.Inputs {
		args[i] = values[input.Name]
	}
	return args, nil
}
