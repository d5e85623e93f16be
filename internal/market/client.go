package market

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
)

// Client implements Gateway with go-ethereum bound contracts.
type Client struct {
	conn          chain.Connection
	tokenAddress  common.Address
	marketAddress common.Address
	tokenABI      abi.ABI
	marketABI     abi.ABI
	confirmWait   time.Duration
	logger        *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithConfirmTimeout bounds how long Mint and ListForSale wait for a
// receipt. Zero waits until the caller's context ends.
func WithConfirmTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.confirmWait = d
	}
}

// WithLogger sets the logger used for transaction progress.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a gateway. conn is used to submit transactions and
// wait for receipts.
func NewClient(conn chain.Connection, tokenAddress, marketAddress common.Address, opts ...ClientOption) (*Client, error) {
	tokenABI, err := abi.JSON(strings.NewReader(TokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	marketABI, err := abi.JSON(strings.NewReader(MarketABI))
	if err != nil {
		return nil, fmt.Errorf("parse market abi: %w", err)
	}

	c := &Client{
		conn:          conn,
		tokenAddress:  tokenAddress,
		marketAddress: marketAddress,
		tokenABI:      tokenABI,
		marketABI:     marketABI,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compile-time interface check.
var _ Gateway = (*Client)(nil)

// marketToken mirrors KBMarket.MarketToken.
type marketToken struct {
	ItemId      *big.Int
	NftContract common.Address
	TokenId     *big.Int
	Seller      common.Address
	Owner       common.Address
	Price       *big.Int
	Sold        bool
}

func (c *Client) token(backend bind.ContractBackend) *bind.BoundContract {
	return bind.NewBoundContract(c.tokenAddress, c.tokenABI, backend, backend, backend)
}

func (c *Client) market(backend bind.ContractBackend) *bind.BoundContract {
	return bind.NewBoundContract(c.marketAddress, c.marketABI, backend, backend, backend)
}

// TokenContract returns the token contract address.
func (c *Client) TokenContract() common.Address {
	return c.tokenAddress
}

// Mint submits mintToken and extracts the new token id from the receipt.
func (c *Client) Mint(ctx context.Context, metadataLocator string, session *chain.Session) (*domain.MintReceipt, error) {
	opts, err := session.Transactor(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tx, err := c.token(c.conn).Transact(opts, "mintToken", metadataLocator)
	if err != nil {
		observability.RecordRPCLatency("mintToken", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: submit mintToken: %v", domain.ErrTransactionFailed, err)
	}
	c.log("mintToken submitted: %s", tx.Hash().Hex())

	receipt, err := c.waitMined(ctx, tx)
	observability.RecordRPCLatency("mintToken", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	tokenID, err := TokenIDFromReceipt(c.tokenABI, receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTransactionFailed, tx.Hash().Hex(), err)
	}

	return &domain.MintReceipt{TokenID: tokenID, TxHash: tx.Hash()}, nil
}

// ListingFee reads getListingPrice.
func (c *Client) ListingFee(ctx context.Context, conn chain.Connection) (*big.Int, error) {
	var out []interface{}
	if err := c.call(ctx, c.market(conn), common.Address{}, &out, "getListingPrice"); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getListingPrice: unexpected %d outputs", domain.ErrTransactionFailed, len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ListForSale submits mintNft with the listing fee attached.
func (c *Client) ListForSale(ctx context.Context, tokenContract common.Address, tokenID, price, listingFee *big.Int, session *chain.Session) (common.Hash, error) {
	opts, err := session.Transactor(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	opts.Value = new(big.Int).Set(listingFee)

	start := time.Now()
	tx, err := c.market(c.conn).Transact(opts, "mintNft", tokenContract, tokenID, price)
	if err != nil {
		observability.RecordRPCLatency("mintNft", time.Since(start).Seconds())
		return common.Hash{}, fmt.Errorf("%w: submit mintNft: %v", domain.ErrTransactionFailed, err)
	}
	c.log("mintNft submitted: %s", tx.Hash().Hex())

	_, err = c.waitMined(ctx, tx)
	observability.RecordRPCLatency("mintNft", time.Since(start).Seconds())
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// FetchMintedItems reads fetchMintedNfts as caller. The marketplace scopes
// the result by msg.sender; a zero caller reads as the zero address.
func (c *Client) FetchMintedItems(ctx context.Context, conn chain.Connection, caller common.Address) ([]domain.RawListing, error) {
	var out []interface{}
	if err := c.call(ctx, c.market(conn), caller, &out, "fetchMintedNfts"); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: fetchMintedNfts: unexpected %d outputs", domain.ErrTransactionFailed, len(out))
	}

	tokens := *abi.ConvertType(out[0], new([]marketToken)).(*[]marketToken)
	items := make([]domain.RawListing, len(tokens))
	for i, t := range tokens {
		items[i] = domain.RawListing{
			ItemID:        t.ItemId,
			TokenContract: t.NftContract,
			TokenID:       t.TokenId,
			Seller:        t.Seller,
			Owner:         t.Owner,
			Price:         t.Price,
			Sold:          t.Sold,
		}
	}
	return items, nil
}

// TokenURI reads tokenURI(tokenID).
func (c *Client) TokenURI(ctx context.Context, conn chain.Connection, tokenID *big.Int) (string, error) {
	var out []interface{}
	if err := c.call(ctx, c.token(conn), common.Address{}, &out, "tokenURI", tokenID); err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", fmt.Errorf("%w: tokenURI: unexpected %d outputs", domain.ErrTransactionFailed, len(out))
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// call performs a read-only contract call.
func (c *Client) call(ctx context.Context, contract *bind.BoundContract, from common.Address, out *[]interface{}, method string, params ...interface{}) error {
	start := time.Now()
	err := contract.Call(&bind.CallOpts{Context: ctx, From: from}, out, method, params...)
	observability.RecordRPCLatency(method, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: call %s: %v", domain.ErrTransactionFailed, method, err)
	}
	return nil
}

// waitMined waits for the receipt and rejects failed transactions.
func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.confirmWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmWait)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, c.conn, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: wait for %s: %v", domain.ErrTransactionFailed, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTransactionFailed, tx.Hash().Hex(), ErrReverted)
	}
	c.log("confirmed %s in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	return receipt, nil
}

func (c *Client) log(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf("[market] "+format, args...)
	}
}
