// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/api/utils"
	"github.com/vechain/stakepoints/auth"
	"github.com/vechain/stakepoints/journal"
	"github.com/vechain/stakepoints/ledger"
	"github.com/vechain/stakepoints/reverts"
	"github.com/vechain/stakepoints/thor"
)

const defaultJournalLimit = 100

// Journal is the read side of the operation journal.
type Journal interface {
	Filter(ctx context.Context, filter *journal.Filter) ([]*journal.Entry, error)
}

type Records struct {
	ledger       *ledger.Ledger
	signing      *auth.Signing
	guard        *auth.Guard
	journal      Journal
	journalLimit uint64
}

// New creates the records api. jnl may be nil, in which case the journal
// endpoint answers 404.
func New(l *ledger.Ledger, signing *auth.Signing, guard *auth.Guard, jnl Journal, journalLimit uint64) *Records {
	if journalLimit == 0 {
		journalLimit = 1000
	}
	return &Records{
		ledger:       l,
		signing:      signing,
		guard:        guard,
		journal:      jnl,
		journalLimit: journalLimit,
	}
}

// convertError maps ledger and auth failures onto http status codes.
func convertError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrRecordNotFound):
		return utils.NotFound(err)
	case errors.Is(err, ledger.ErrUnauthorized):
		return utils.Forbidden(err)
	case errors.Is(err, ledger.ErrInsufficientStake),
		errors.Is(err, ledger.ErrTransferFailure),
		errors.Is(err, auth.ErrReplayed):
		return utils.Conflict(err)
	case errors.Is(err, ledger.ErrNotImplemented):
		return utils.HTTPError(err, http.StatusNotImplemented)
	case reverts.IsRevertErr(err):
		return utils.BadRequest(err)
	}
	return err
}

func (r *Records) handleGetRecord(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	rec, err := r.ledger.Record(addr)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertRecord(addr, rec, r.ledger.Now()))
}

func (r *Records) handleGetOwnerRecord(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	addr, rec, err := r.ledger.RecordOf(owner)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertRecord(addr, rec, r.ledger.Now()))
}

func (r *Records) handleCreateRecord(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	_, origin, err := r.authenticate(req, auth.OpCreate, owner)
	if err != nil {
		return err
	}
	if origin != owner {
		return utils.Forbidden(ledger.ErrUnauthorized)
	}
	addr, rec, err := r.ledger.CreateRecord(req.Context(), owner)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertRecord(addr, rec, r.ledger.Now()))
}

// authenticate decodes the signed body of op against the record addr and
// returns the principal that signed it. The request is consumed on success.
// A create request names the owner as addr and may omit the amount.
func (r *Records) authenticate(req *http.Request, op auth.Op, addr thor.Address) (*auth.SignedRequest, thor.Address, error) {
	var body SignedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, thor.Address{}, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var amount uint64
	switch {
	case body.Amount != nil:
		amount = uint64(*body.Amount)
	case op != auth.OpCreate:
		return nil, thor.Address{}, utils.BadRequest(errors.New("body: missing amount"))
	}
	if body.Expiration == nil {
		return nil, thor.Address{}, utils.BadRequest(errors.New("body: missing expiration"))
	}
	signed := &auth.SignedRequest{
		Request: auth.Request{
			Op:         op,
			Record:     addr,
			Amount:     amount,
			Expiration: uint64(*body.Expiration),
		},
		Signature: body.Signature,
	}
	if body.Nonce != nil {
		signed.Nonce = uint64(*body.Nonce)
	}

	origin, err := r.signing.Origin(signed)
	if err != nil {
		return nil, thor.Address{}, convertError(err)
	}
	if err := r.guard.Admit(signed, origin, r.ledger.Now()); err != nil {
		return nil, thor.Address{}, convertError(err)
	}
	return signed, origin, nil
}

func (r *Records) handleStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	signed, origin, err := r.authenticate(req, auth.OpStake, addr)
	if err != nil {
		return err
	}
	rec, err := r.ledger.Stake(req.Context(), origin, addr, signed.Amount)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertRecord(addr, rec, r.ledger.Now()))
}

func (r *Records) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	signed, origin, err := r.authenticate(req, auth.OpUnstake, addr)
	if err != nil {
		return err
	}
	rec, err := r.ledger.Unstake(req.Context(), origin, addr, signed.Amount)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, convertRecord(addr, rec, r.ledger.Now()))
}

func (r *Records) handleClaim(_ http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return convertError(r.ledger.ClaimPoints(req.Context(), thor.Address{}, addr))
}

func (r *Records) handleQueryPoints(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	pts, err := r.ledger.QueryPoints(req.Context(), addr)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, utils.M{"points": pts})
}

func (r *Records) parseJournalFilter(req *http.Request, addr thor.Address) (*journal.Filter, error) {
	from, err := utils.Uint64Query(req, "from", 0)
	if err != nil {
		return nil, err
	}
	to, err := utils.Uint64Query(req, "to", 0)
	if err != nil {
		return nil, err
	}
	offset, err := utils.Uint64Query(req, "offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := utils.Uint64Query(req, "limit", min(defaultJournalLimit, r.journalLimit))
	if err != nil {
		return nil, err
	}
	if limit > r.journalLimit {
		return nil, utils.Forbidden(errors.New("options.limit exceeds the maximum allowed value"))
	}

	filter := &journal.Filter{
		Record:  &addr,
		Op:      req.URL.Query().Get("op"),
		Options: &journal.Options{Offset: offset, Limit: limit},
	}
	if from > 0 || to > 0 {
		filter.Range = &journal.Range{From: from, To: to}
	}
	switch order := journal.Order(req.URL.Query().Get("order")); order {
	case "", journal.ASC:
		filter.Order = journal.ASC
	case journal.DESC:
		filter.Order = journal.DESC
	default:
		return nil, utils.BadRequest(errors.Errorf("order: unknown value %q", order))
	}
	return filter, nil
}

func (r *Records) handleJournal(w http.ResponseWriter, req *http.Request) error {
	if r.journal == nil {
		return utils.NotFound(errors.New("journal disabled"))
	}
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	filter, err := r.parseJournalFilter(req, addr)
	if err != nil {
		return err
	}
	entries, err := r.journal.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertEntries(entries))
}

// Mount registers the record routes under pathPrefix+"/records" and
// pathPrefix+"/owners".
func (r *Records) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix + "/records").Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("records_get_record").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRecord))
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("records_stake").
		HandlerFunc(utils.WrapHandlerFunc(r.handleStake))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("records_unstake").
		HandlerFunc(utils.WrapHandlerFunc(r.handleUnstake))
	sub.Path("/{address}/claim").
		Methods(http.MethodPost).
		Name("records_claim").
		HandlerFunc(utils.WrapHandlerFunc(r.handleClaim))
	sub.Path("/{address}/points").
		Methods(http.MethodGet).
		Name("records_get_points").
		HandlerFunc(utils.WrapHandlerFunc(r.handleQueryPoints))
	sub.Path("/{address}/journal").
		Methods(http.MethodGet).
		Name("records_get_journal").
		HandlerFunc(utils.WrapHandlerFunc(r.handleJournal))

	owners := root.PathPrefix(pathPrefix + "/owners").Subrouter()

	owners.Path("/{owner}/record").
		Methods(http.MethodGet).
		Name("records_get_owner_record").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetOwnerRecord))
	owners.Path("/{owner}/record").
		Methods(http.MethodPost).
		Name("records_create_owner_record").
		HandlerFunc(utils.WrapHandlerFunc(r.handleCreateRecord))
}
