package routing

import (
	"github.com/meshcore/mesh/pkg/lib/log"
	"github.com/meshcore/mesh/pkg/types"
	"github.com/meshcore/mesh/pkg/wire"
)

var logger = log.Logger("routing")

// CredentialLookup resolves a device's public key, as provided by the
// Credentials Store.
type CredentialLookup interface {
	Lookup(id types.DeviceID) ([]byte, bool)
}

// Verifier checks a signature under a raw public key.
type Verifier interface {
	Verify(publicKey, msg, sig []byte) bool
}

// Signer signs data with this device's own key.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Advertiser implements the IARP Advertisement Engine: periodic
// neighbor announcement and zone propagation.
type Advertiser struct {
	self       types.DeviceID
	zoneRadius uint8
	lifetime   types.RelTime

	table       *Table
	credentials CredentialLookup
	verifier    Verifier
	signer      Signer
}

// NewAdvertiser builds an Advertiser for self, writing discovered peers
// into table.
func NewAdvertiser(self types.DeviceID, zoneRadius uint8, lifetime types.RelTime, table *Table, credentials CredentialLookup, verifier Verifier, signer Signer) *Advertiser {
	return &Advertiser{
		self:        self,
		zoneRadius:  zoneRadius,
		lifetime:    lifetime,
		table:       table,
		credentials: credentials,
		verifier:    verifier,
		signer:      signer,
	}
}

// Tick emits a fresh advertisement with ttl = zoneRadius-1, to be
// broadcast by the caller.
func (a *Advertiser) Tick() (wire.Advertisement, error) {
	ttl := uint8(0)
	if a.zoneRadius > 0 {
		ttl = a.zoneRadius - 1
	}
	ad := wire.Advertisement{
		Origin: a.self,
		Hops:   []types.DeviceID{a.self},
		TTL:    ttl,
	}
	sig, err := a.signer.Sign(ad.SignedBytes())
	if err != nil {
		return wire.Advertisement{}, err
	}
	ad.Sig = sig
	return ad, nil
}

// OnAdvertisement processes a received advertisement: validates it,
// updates the routing table, and returns a rebroadcast frame (and true)
// if propagation should continue.
func (a *Advertiser) OnAdvertisement(ad wire.Advertisement, now types.RelTime) (wire.Advertisement, bool) {
	if ad.Origin == a.self {
		return wire.Advertisement{}, false
	}

	pubKey, ok := a.credentials.Lookup(ad.Origin)
	if !ok {
		logger.Debug("dropping advertisement from unknown origin", "origin", ad.Origin)
		return wire.Advertisement{}, false
	}
	if !a.verifier.Verify(pubKey, ad.SignedBytes(), ad.Sig) {
		logger.Debug("dropping advertisement with invalid signature", "origin", ad.Origin)
		return wire.Advertisement{}, false
	}
	if len(ad.Hops) == 0 {
		return wire.Advertisement{}, false
	}

	a.table.Insert(ad.Origin, ad.Hops[len(ad.Hops)-1], uint8(len(ad.Hops)), now, a.lifetime)

	if ad.TTL == 0 {
		return wire.Advertisement{}, false
	}

	next := wire.Advertisement{
		Origin: ad.Origin,
		Hops:   append(append([]types.DeviceID(nil), ad.Hops...), a.self),
		TTL:    ad.TTL - 1,
		Sig:    ad.Sig,
	}
	return next, true
}
