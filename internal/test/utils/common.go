package testUtils

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
	"lukechampine.com/uint128"
)

// Vault is an in-memory token vault standing in for the host's token
// transfer layer. Credit* simulates a caller transferring tokens to the
// pair before invoking an amount-in-implicit operation.
type Vault struct {
	mu       sync.Mutex
	balX     uint128.Uint128
	balY     uint128.Uint128
	receipts map[common.Address]types.Amounts
}

func NewVault() *Vault {
	return &Vault{receipts: make(map[common.Address]types.Amounts)}
}

func (v *Vault) CreditX(amount uint128.Uint128) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balX = v.balX.Add(amount)
}

func (v *Vault) CreditY(amount uint128.Uint128) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balY = v.balY.Add(amount)
}

func (v *Vault) BalanceX() (uint128.Uint128, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balX, nil
}

func (v *Vault) BalanceY() (uint128.Uint128, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balY, nil
}

func (v *Vault) TransferX(to common.Address, amount uint128.Uint128) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balX.Cmp(amount) < 0 {
		return errors.New("vault: insufficient X balance")
	}
	v.balX = v.balX.Sub(amount)
	r := v.receipts[to]
	r.X = r.X.Add(amount)
	v.receipts[to] = r
	return nil
}

func (v *Vault) TransferY(to common.Address, amount uint128.Uint128) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balY.Cmp(amount) < 0 {
		return errors.New("vault: insufficient Y balance")
	}
	v.balY = v.balY.Sub(amount)
	r := v.receipts[to]
	r.Y = r.Y.Add(amount)
	v.receipts[to] = r
	return nil
}

// Received reports everything transferred out to an address so far.
func (v *Vault) Received(addr common.Address) types.Amounts {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.receipts[addr]
}

// ShareLedger is an in-memory fungible-share ledger.
type ShareLedger struct {
	mu       sync.Mutex
	balances map[uint32]map[common.Address]*big.Int
	supplies map[uint32]*big.Int
}

func NewShareLedger() *ShareLedger {
	return &ShareLedger{
		balances: make(map[uint32]map[common.Address]*big.Int),
		supplies: make(map[uint32]*big.Int),
	}
}

func (l *ShareLedger) Mint(owner common.Address, id uint32, shares *big.Int) error {
	if shares.Sign() <= 0 {
		return errors.New("ledger: non-positive mint")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.balances[id]
	if owners == nil {
		owners = make(map[common.Address]*big.Int)
		l.balances[id] = owners
	}
	bal := owners[owner]
	if bal == nil {
		bal = new(big.Int)
		owners[owner] = bal
	}
	bal.Add(bal, shares)

	supply := l.supplies[id]
	if supply == nil {
		supply = new(big.Int)
		l.supplies[id] = supply
	}
	supply.Add(supply, shares)
	return nil
}

func (l *ShareLedger) Burn(owner common.Address, id uint32, shares *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[id][owner]
	if bal == nil || bal.Cmp(shares) < 0 {
		return errors.New("ledger: burn exceeds balance")
	}
	bal.Sub(bal, shares)
	l.supplies[id].Sub(l.supplies[id], shares)
	return nil
}

func (l *ShareLedger) BalanceOf(owner common.Address, id uint32) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[id][owner]; bal != nil {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (l *ShareLedger) TotalSupply(id uint32) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if supply := l.supplies[id]; supply != nil {
		return new(big.Int).Set(supply)
	}
	return new(big.Int)
}

// Clock is a manually advanced unix-seconds source.
type Clock struct {
	mu  sync.Mutex
	now uint64
}

func NewClock(start uint64) *Clock { return &Clock{now: start} }

func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}
