package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token metadata, matching the SerieCoin deployment.
const (
	TokenName     = "SerieCoin"
	TokenSymbol   = "SRC"
	TokenDecimals = 18
)

// InitialSupply is minted to the owner when the ledger is created:
// 1,000,000 whole tokens in 18-decimal units.
var InitialSupply = new(big.Int).Mul(big.NewInt(1_000_000), Ether())

// Ether returns 10^18, one whole token in base units.
func Ether() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

// Token is the fungible token ledger. Balances and allowances are exact
// integers in base units; every mutation keeps sum(balances) == totalSupply.
// Token is not safe for concurrent use on its own; the Engine serializes
// access.
type Token struct {
	owner       common.Address
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

// NewToken creates the token ledger and mints the initial supply to owner.
func NewToken(owner common.Address) *Token {
	t := &Token{
		owner:       owner,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
	t.credit(owner, InitialSupply)
	t.totalSupply.Add(t.totalSupply, InitialSupply)
	return t
}

func (t *Token) Name() string          { return TokenName }
func (t *Token) Symbol() string        { return TokenSymbol }
func (t *Token) Owner() common.Address { return t.owner }
func (t *Token) TotalSupply() *big.Int { return new(big.Int).Set(t.totalSupply) }

// BalanceOf returns a copy of the account balance.
func (t *Token) BalanceOf(account common.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Allowance returns a copy of the spender allowance granted by owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Mint increases to's balance and the total supply. Owner only.
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if caller != t.owner {
		return ErrUnauthorized
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	t.credit(to, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

// Burn destroys amount from the caller's own balance.
func (t *Token) Burn(caller common.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.totalSupply.Sub(t.totalSupply, amount)
	return nil
}

// Transfer moves amount from the caller to to.
func (t *Token) Transfer(caller, to common.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

// Approve sets the caller's allowance for spender. A zero amount clears it.
func (t *Token) Approve(caller, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	m, ok := t.allowances[caller]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[caller] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// TransferFrom moves amount from from to to, spending the caller's allowance.
func (t *Token) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	allowance := t.allowances[from][caller]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	t.credit(to, amount)
	return nil
}

func (t *Token) credit(account common.Address, amount *big.Int) {
	b, ok := t.balances[account]
	if !ok {
		b = new(big.Int)
		t.balances[account] = b
	}
	b.Add(b, amount)
}

func (t *Token) debit(account common.Address, amount *big.Int) error {
	b, ok := t.balances[account]
	if !ok || b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}

// sumBalances is used by the invariant check job.
func (t *Token) sumBalances() *big.Int {
	sum := new(big.Int)
	for _, b := range t.balances {
		sum.Add(sum, b)
	}
	return sum
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
