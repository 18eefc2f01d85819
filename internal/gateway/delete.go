package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/Luiggi-Git/carocha-functions/internal/domain"
	"github.com/Luiggi-Git/carocha-functions/internal/storage"
)

// DeleteState is a step of a mediated delete.
type DeleteState int

const (
	DeleteRequested DeleteState = iota
	DeleteChecked
	DeleteDeleted
	DeleteNotFound
	DeleteErrored
)

func (s DeleteState) String() string {
	switch s {
	case DeleteRequested:
		return "requested"
	case DeleteChecked:
		return "checked"
	case DeleteDeleted:
		return "deleted"
	case DeleteNotFound:
		return "not_found"
	case DeleteErrored:
		return "errored"
	default:
		return fmt.Sprintf("DeleteState(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s DeleteState) Terminal() bool {
	return s == DeleteDeleted || s == DeleteNotFound || s == DeleteErrored
}

var deleteTransitions = map[DeleteState][]DeleteState{
	DeleteRequested: {DeleteChecked, DeleteErrored},
	DeleteChecked:   {DeleteDeleted, DeleteNotFound, DeleteErrored},
}

// DeleteResult is the terminal state of a mediated delete.
type DeleteResult struct {
	Name  string
	State DeleteState
}

type deletion struct {
	name   string
	state  DeleteState
	logger *slog.Logger
}

func (d *deletion) moveTo(next DeleteState) {
	if !lo.Contains(deleteTransitions[d.state], next) {
		// unreachable from DeleteObject
		panic(fmt.Sprintf("invalid delete transition %s -> %s", d.state, next))
	}
	d.logger.Debug("delete transition", "from", d.state.String(), "to", next.String())
	d.state = next
}

func (d *deletion) result() DeleteResult {
	return DeleteResult{Name: d.name, State: d.state}
}

// DeleteObject checks that name exists and deletes it with the service
// credential. The name is trimmed first; an empty name is rejected before any
// store call. An absent object is reported as NOT_FOUND without issuing a
// delete. Store failures are returned as COLLABORATOR_ERROR and are not
// retried or rolled back.
func (s *Service) DeleteObject(ctx context.Context, name string) (DeleteResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DeleteResult{State: DeleteRequested}, domain.NewInvalidInputError("name", "required")
	}

	d := &deletion{
		name:   name,
		state:  DeleteRequested,
		logger: slog.Default().With("container", s.Container(), "name", name),
	}

	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		d.moveTo(DeleteErrored)
		return d.result(), domain.NewCollaboratorError("check object existence", err)
	}
	d.moveTo(DeleteChecked)

	if !exists {
		d.moveTo(DeleteNotFound)
		return d.result(), domain.NewNotFoundError("object", name)
	}

	if err := s.store.Delete(ctx, name); err != nil {
		// removed by someone else between the check and the delete
		if errors.Is(err, storage.ErrNotFound) {
			d.moveTo(DeleteNotFound)
			return d.result(), domain.NewNotFoundError("object", name)
		}
		d.moveTo(DeleteErrored)
		return d.result(), domain.NewCollaboratorError("delete object", err)
	}
	d.moveTo(DeleteDeleted)
	return d.result(), nil
}
