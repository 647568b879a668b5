package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/dbx"
	"github.com/fairwaylabs/scorecard/internal/gateway"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/netx"
	"github.com/fairwaylabs/scorecard/internal/store/courses"
	"github.com/fairwaylabs/scorecard/internal/store/syncqueue"
)

// CourseService is the entity store for course definitions.
//
// Courses have a two-stage lifecycle on top of the usual sync states: a
// draft stays strictly local (no queue traffic) until it is published, at
// which point the whole definition ships to the server in one create.
type CourseService struct {
	db       *sql.DB
	courses  courses.Repository
	holeDefs courses.HoleDefinitionRepository
	queue    syncqueue.Repository
	remote   gateway.Client
	checker  netx.Checker
	log      logging.Logger
}

func NewCourseService(db *sql.DB, courseRepo courses.Repository, holeDefRepo courses.HoleDefinitionRepository,
	queueRepo syncqueue.Repository, remote gateway.Client, checker netx.Checker, log logging.Logger) *CourseService {
	return &CourseService{
		db:       db,
		courses:  courseRepo,
		holeDefs: holeDefRepo,
		queue:    queueRepo,
		remote:   remote,
		checker:  checker,
		log:      log.With("service", "courses"),
	}
}

// CourseDraft carries the fields of a new draft course.
type CourseDraft struct {
	Name  string
	City  string
	State string
	Lat   float64
	Lng   float64
}

// CourseUpdate carries a partial edit; nil fields are left untouched.
type CourseUpdate struct {
	Name  *string
	City  *string
	State *string
	Lat   *float64
	Lng   *float64
}

func (s *CourseService) hydrate(ctx context.Context, c *models.Course) error {
	hds, err := s.holeDefs.ListByCourse(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Holes = hds
	return nil
}

func (s *CourseService) hydrateAll(ctx context.Context, cs []models.Course) ([]models.Course, error) {
	result := make([]models.Course, 0, len(cs))
	for _, c := range cs {
		if c.Status == models.StatusDeleted {
			continue
		}
		if err := s.hydrate(ctx, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *CourseService) GetAll(ctx context.Context) ([]models.Course, error) {
	cs, err := s.courses.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, cs)
}

// GetDrafts returns local-only draft courses ordered by name.
func (s *CourseService) GetDrafts(ctx context.Context) ([]models.Course, error) {
	cs, err := s.courses.ListByStage(ctx, models.StageDraft)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, cs)
}

// GetPublished returns published courses ordered by name.
func (s *CourseService) GetPublished(ctx context.Context) ([]models.Course, error) {
	cs, err := s.courses.ListByStage(ctx, models.StagePublished)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, cs)
}

func (s *CourseService) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.StatusDeleted {
		return nil, common.ErrNotFound
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create stores a new draft. Drafts are local-only: nothing is enqueued
// until the course is published.
func (s *CourseService) Create(ctx context.Context, draft CourseDraft) (*models.Course, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: course name is required", common.ErrValidation)
	}

	c := &models.Course{
		Name:   name,
		City:   strings.TrimSpace(draft.City),
		State:  strings.TrimSpace(draft.State),
		Lat:    draft.Lat,
		Lng:    draft.Lng,
		Stage:  models.StageDraft,
		Status: models.StatusPending,
	}
	if _, err := s.courses.Insert(ctx, c); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, c.ID)
}

// Update applies a partial edit. Editing a draft stays local; editing a
// published synced course demotes it to modified and enqueues an update.
func (s *CourseService) Update(ctx context.Context, id int64, upd CourseUpdate) (*models.Course, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("%w: course name is required", common.ErrValidation)
		}
		c.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.City != nil {
		c.City = *upd.City
	}
	if upd.State != nil {
		c.State = *upd.State
	}
	if upd.Lat != nil {
		c.Lat = *upd.Lat
	}
	if upd.Lng != nil {
		c.Lng = *upd.Lng
	}

	if c.Stage == models.StageDraft {
		if err := s.courses.Update(ctx, c); err != nil {
			return nil, err
		}
		return s.GetByID(ctx, id)
	}

	if c.Status == models.StatusSynced {
		next, terr := c.Status.Transition(models.StatusModified)
		if terr != nil {
			return nil, terr
		}
		c.Status = next
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := courses.NewSQLiteRepository(tx).Update(ctx, c); err != nil {
			return err
		}
		return s.refreshOrEnqueue(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx, id)
	return s.GetByID(ctx, id)
}

func (s *CourseService) refreshOrEnqueue(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
	q := syncqueue.NewSQLiteRepository(tx)

	payload, err := marshalPayload(gateway.CourseToWire(*c))
	if err != nil {
		return err
	}
	refreshed, err := q.RefreshPayload(ctx, models.EntityCourse, c.ID, payload)
	if err != nil {
		return err
	}
	if refreshed {
		return nil
	}

	op := models.OpCreate
	if c.ServerID != nil {
		op = models.OpUpdate
	}
	item, err := newQueueItem(models.EntityCourse, op, c.ID, gateway.CourseToWire(*c))
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, item)
}

// UpsertHoleDefinition writes one hole description by its (course, number)
// identity. On a draft the change stays local. On a published course the
// hole must already exist on the server; the edit is pushed as a standalone
// hole-definition update.
func (s *CourseService) UpsertHoleDefinition(ctx context.Context, courseID int64, hd models.HoleDefinition) (*models.HoleDefinition, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if hd.Number < 1 {
		return nil, fmt.Errorf("%w: hole number must be positive", common.ErrValidation)
	}
	hd.CourseID = courseID

	if c.Stage == models.StageDraft {
		if err := s.holeDefs.Upsert(ctx, &hd); err != nil {
			return nil, err
		}
		return s.holeDefs.GetByID(ctx, hd.ID)
	}

	existing, err := s.holeDefs.GetByNumber(ctx, courseID, hd.Number)
	if err != nil {
		return nil, err
	}
	hd.ServerID = existing.ServerID
	if hd.ServerID == nil {
		return nil, fmt.Errorf("%w: published hole has no server id", common.ErrValidation)
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		hrepo := courses.NewSQLiteHoleDefinitionRepository(tx)
		if err := hrepo.Upsert(ctx, &hd); err != nil {
			return err
		}

		q := syncqueue.NewSQLiteRepository(tx)
		payload, err := marshalPayload(gateway.HoleDefinitionToWire(hd))
		if err != nil {
			return err
		}
		refreshed, err := q.RefreshPayload(ctx, models.EntityHoleDef, hd.ID, payload)
		if err != nil {
			return err
		}
		if refreshed {
			return nil
		}
		item, err := newQueueItem(models.EntityHoleDef, models.OpUpdate, hd.ID, gateway.HoleDefinitionToWire(hd))
		if err != nil {
			return err
		}
		return q.Enqueue(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateHoleSync(ctx, hd.ID)
	return s.holeDefs.GetByID(ctx, hd.ID)
}

// Publish promotes a draft: the course becomes published, stays pending,
// and its full definition is enqueued as a single create.
func (s *CourseService) Publish(ctx context.Context, id int64) (*models.Course, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Stage == models.StagePublished {
		return nil, fmt.Errorf("%w: course is already published", common.ErrValidation)
	}
	if len(c.Holes) == 0 {
		return nil, fmt.Errorf("%w: cannot publish a course without holes", common.ErrValidation)
	}

	c.Stage = models.StagePublished

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := courses.NewSQLiteRepository(tx).Update(ctx, c); err != nil {
			return err
		}
		return s.refreshOrEnqueue(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	s.tryImmediateSync(ctx, id)
	return s.GetByID(ctx, id)
}

// Delete removes a course. Only drafts can be deleted: the wire contract
// has no course deletion, so a published course is permanent.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	c, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.Stage == models.StagePublished {
		return fmt.Errorf("%w: published courses cannot be deleted", common.ErrValidation)
	}

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityCourse, id); err != nil {
			return err
		}
		if err := courses.NewSQLiteHoleDefinitionRepository(tx).DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return courses.NewSQLiteRepository(tx).Delete(ctx, id)
	})
}

// SyncToServer pushes a published course's pending create or modified
// update. A successful create replaces the local rows with the server's
// returned copy so every hole definition picks up its server id.
func (s *CourseService) SyncToServer(ctx context.Context, id int64) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Stage == models.StageDraft {
		return nil, fmt.Errorf("%w: drafts are not synced", common.ErrValidation)
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, err
	}

	switch c.Status {
	case models.StatusSynced:
		return c, nil

	case models.StatusPending:
		created, err := s.remote.CreateCourse(ctx, *c)
		if err != nil {
			return nil, fmt.Errorf("failed to create course on server: %w", err)
		}
		if created.ServerID == nil {
			return nil, fmt.Errorf("%w: server response lacks an id", common.ErrServer)
		}
		newID, err := s.replaceWithServerCopy(ctx, c.ID, *created)
		if err != nil {
			return nil, err
		}
		return s.GetByID(ctx, newID)

	case models.StatusModified:
		updated, err := s.remote.UpdateCourse(ctx, *c)
		if err != nil {
			return nil, fmt.Errorf("failed to update course on server: %w", err)
		}
		next, terr := c.Status.Transition(models.StatusSynced)
		if terr != nil {
			return nil, terr
		}
		err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			if err := courses.NewSQLiteRepository(tx).SetSyncState(ctx, id, next, nil); err != nil {
				return err
			}
			if err := s.adoptHoleServerIDs(ctx, tx, id, updated.Holes); err != nil {
				return err
			}
			return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityCourse, id)
		})
		if err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// replaceWithServerCopy swaps the freshly-created course's local rows for
// the server's authoritative copy and returns the new local id.
func (s *CourseService) replaceWithServerCopy(ctx context.Context, oldID int64, server models.Course) (int64, error) {
	server.Status = models.StatusSynced
	server.Stage = models.StagePublished

	var newID int64
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		crepo := courses.NewSQLiteRepository(tx)
		hrepo := courses.NewSQLiteHoleDefinitionRepository(tx)

		if err := hrepo.DeleteByCourse(ctx, oldID); err != nil {
			return err
		}
		if err := crepo.Delete(ctx, oldID); err != nil {
			return err
		}

		id, err := crepo.Insert(ctx, &server)
		if err != nil {
			return err
		}
		newID = id
		for i := range server.Holes {
			server.Holes[i].CourseID = id
			if err := hrepo.Upsert(ctx, &server.Holes[i]); err != nil {
				return err
			}
		}
		return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityCourse, oldID)
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

// adoptHoleServerIDs writes back the server ids from a course response,
// matching holes by number.
func (s *CourseService) adoptHoleServerIDs(ctx context.Context, tx dbx.DBTX, courseID int64, serverHoles []models.HoleDefinition) error {
	hrepo := courses.NewSQLiteHoleDefinitionRepository(tx)
	local, err := hrepo.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	byNumber := make(map[int]*int64, len(serverHoles))
	for _, sh := range serverHoles {
		byNumber[sh.Number] = sh.ServerID
	}
	for i := range local {
		sid, ok := byNumber[local[i].Number]
		if !ok || sid == nil || local[i].ServerID != nil {
			continue
		}
		local[i].ServerID = sid
		if err := hrepo.Upsert(ctx, &local[i]); err != nil {
			return err
		}
	}
	return nil
}

// SyncHoleDefinition pushes one standalone hole-definition edit.
func (s *CourseService) SyncHoleDefinition(ctx context.Context, id int64) (*models.HoleDefinition, error) {
	hd, err := s.holeDefs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hd.ServerID == nil {
		return nil, fmt.Errorf("%w: hole definition has no server id", common.ErrValidation)
	}

	updated, err := s.remote.UpdateHoleDefinition(ctx, *hd)
	if err != nil {
		return nil, fmt.Errorf("failed to update hole definition on server: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		updated.ID = hd.ID
		updated.CourseID = hd.CourseID
		if err := courses.NewSQLiteHoleDefinitionRepository(tx).Upsert(ctx, updated); err != nil {
			return err
		}
		return syncqueue.NewSQLiteRepository(tx).DeleteForEntity(ctx, models.EntityHoleDef, hd.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.holeDefs.GetByID(ctx, hd.ID)
}

// FetchFromServer pulls the published course catalog and merges it in:
// unknown courses are inserted as synced, synced locals are overwritten,
// and pending or modified locals are left alone. Drafts are unaffected.
func (s *CourseService) FetchFromServer(ctx context.Context) ([]models.Course, error) {
	serverCourses, err := s.remote.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}

	for _, sc := range serverCourses {
		if sc.ServerID == nil {
			continue
		}
		local, err := s.courses.GetByServerID(ctx, *sc.ServerID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			if err := s.insertFromServer(ctx, sc); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case local.Status == models.StatusSynced:
			if err := s.overwriteFromServer(ctx, local, sc); err != nil {
				return nil, err
			}
		default:
			// local wins while a change is unpushed
		}
	}

	return s.GetPublished(ctx)
}

func (s *CourseService) insertFromServer(ctx context.Context, sc models.Course) error {
	sc.Status = models.StatusSynced
	sc.Stage = models.StagePublished
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := courses.NewSQLiteRepository(tx).Insert(ctx, &sc)
		if err != nil {
			return err
		}
		hrepo := courses.NewSQLiteHoleDefinitionRepository(tx)
		for i := range sc.Holes {
			sc.Holes[i].CourseID = id
			if err := hrepo.Upsert(ctx, &sc.Holes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CourseService) overwriteFromServer(ctx context.Context, local *models.Course, sc models.Course) error {
	sc.ID = local.ID
	sc.Status = models.StatusSynced
	sc.Stage = models.StagePublished
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := courses.NewSQLiteRepository(tx).Update(ctx, &sc); err != nil {
			return err
		}
		hrepo := courses.NewSQLiteHoleDefinitionRepository(tx)
		if err := hrepo.DeleteByCourse(ctx, local.ID); err != nil {
			return err
		}
		for i := range sc.Holes {
			sc.Holes[i].CourseID = local.ID
			if err := hrepo.Upsert(ctx, &sc.Holes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CourseService) tryImmediateSync(ctx context.Context, id int64) {
	if s.checker == nil || !s.checker.IsOnline(ctx) {
		return
	}
	err := withFlushRetry(ctx, func(ctx context.Context) error {
		_, err := s.SyncToServer(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "immediate course sync failed, left queued", "course", id, "error", err)
	}
}

func (s *CourseService) tryImmediateHoleSync(ctx context.Context, id int64) {
	if s.checker == nil || !s.checker.IsOnline(ctx) {
		return
	}
	err := withFlushRetry(ctx, func(ctx context.Context) error {
		_, err := s.SyncHoleDefinition(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "immediate hole definition sync failed, left queued", "hole_definition", id, "error", err)
	}
}
