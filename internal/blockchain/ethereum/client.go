// Package ethereum provides the Ethereum side of ecosystem analytics:
// ERC-20 metadata reads, Uniswap V2 pair discovery and reserve reads, the
// Chainlink native-asset price feed, and the provider deriving normalized
// metrics from them.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mainnet defaults; all three are overridable through configuration.
const (
	DefaultFactoryAddress   = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f" // Uniswap V2 factory
	DefaultWETHAddress      = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultPriceFeedAddress = "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419" // Chainlink ETH/USD
)

const (
	erc20ABIJSON = `[
		{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

	factoryABIJSON = `[
		{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"}]`

	pairABIJSON = `[
		{"constant":true,"inputs":[],"name":"getReserves","outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

	feedABIJSON = `[
		{"inputs":[],"name":"latestAnswer","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"}]`
)

// feedDecimals is the fixed-point scale of the Chainlink USD feeds.
const feedDecimals = 8

// TokenMeta is the ERC-20 metadata triple read from a token contract.
type TokenMeta struct {
	Decimals    uint8
	Symbol      string
	TotalSupply *big.Int
}

// Client reads token, factory, pair and oracle state from an Ethereum node.
type Client struct {
	eth     *ethclient.Client
	factory common.Address
	weth    common.Address
	feed    common.Address
	timeout time.Duration
	logger  *zap.Logger

	erc20ABI   abi.ABI
	factoryABI abi.ABI
	pairABI    abi.ABI
	feedABI    abi.ABI
}

// Dial connects to the RPC endpoint and parses the contract ABIs once.
// Empty contract addresses fall back to the mainnet defaults.
func Dial(rpcURL, factoryAddr, wethAddr, feedAddr string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	c := &Client{
		eth:     eth,
		factory: common.HexToAddress(orDefault(factoryAddr, DefaultFactoryAddress)),
		weth:    common.HexToAddress(orDefault(wethAddr, DefaultWETHAddress)),
		feed:    common.HexToAddress(orDefault(feedAddr, DefaultPriceFeedAddress)),
		timeout: timeout,
		logger:  logger.Named("eth-rpc"),
	}

	for _, p := range []struct {
		name string
		json string
		dst  *abi.ABI
	}{
		{"erc20", erc20ABIJSON, &c.erc20ABI},
		{"factory", factoryABIJSON, &c.factoryABI},
		{"pair", pairABIJSON, &c.pairABI},
		{"feed", feedABIJSON, &c.feedABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(p.json))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s ABI: %w", p.name, err)
		}
		*p.dst = parsed
	}

	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// WETH returns the wrapped-native-asset address the client pairs against.
func (c *Client) WETH() string {
	return c.weth.Hex()
}

// TokenMeta reads decimals, symbol and totalSupply from a token contract.
func (c *Client) TokenMeta(ctx context.Context, token string) (TokenMeta, error) {
	addr := common.HexToAddress(token)

	var meta TokenMeta

	out, err := c.call(ctx, addr, c.erc20ABI, "decimals")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.Decimals = out[0].(uint8)

	out, err = c.call(ctx, addr, c.erc20ABI, "symbol")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.Symbol = out[0].(string)

	out, err = c.call(ctx, addr, c.erc20ABI, "totalSupply")
	if err != nil {
		return TokenMeta{}, err
	}
	meta.TotalSupply = out[0].(*big.Int)

	return meta, nil
}

// PairFor asks the AMM factory for the (token, WETH) pair address. The zero
// address means the factory never created such a pair.
func (c *Client) PairFor(ctx context.Context, token string) (string, error) {
	out, err := c.call(ctx, c.factory, c.factoryABI, "getPair", common.HexToAddress(token), c.weth)
	if err != nil {
		return "", err
	}
	return out[0].(common.Address).Hex(), nil
}

// IsZeroPair reports whether the factory answered with the zero address.
func IsZeroPair(pair string) bool {
	return pair == "" || common.HexToAddress(pair) == (common.Address{})
}

// Reserves reads the pair's current reserve slots in contract order.
func (c *Client) Reserves(ctx context.Context, pair string) (reserve0, reserve1 *big.Int, err error) {
	out, err := c.call(ctx, common.HexToAddress(pair), c.pairABI, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	return out[0].(*big.Int), out[1].(*big.Int), nil
}

// Token0 reads which token occupies the pair's first reserve slot. The
// factory orders pair tokens by address, so the slot varies per pair.
func (c *Client) Token0(ctx context.Context, pair string) (string, error) {
	out, err := c.call(ctx, common.HexToAddress(pair), c.pairABI, "token0")
	if err != nil {
		return "", err
	}
	return out[0].(common.Address).Hex(), nil
}

// NativePriceUSD reads the Chainlink feed's latest answer and rescales the
// 8-decimal fixed-point integer into a USD decimal.
func (c *Client) NativePriceUSD(ctx context.Context) (decimal.Decimal, error) {
	out, err := c.call(ctx, c.feed, c.feedABI, "latestAnswer")
	if err != nil {
		return decimal.Zero, err
	}
	answer := out[0].(*big.Int)
	return decimal.NewFromBigInt(answer, -feedDecimals), nil
}

// call packs a view-method invocation, executes it via eth_call and unpacks
// the outputs.
func (c *Client) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := contractABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}

	c.logger.Debug("Contract call completed",
		zap.String("to", to.Hex()),
		zap.String("method", method))

	return out, nil
}
