package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sandeepkv93/iaa/internal/model"
)

const (
	goalsCollection       = "goals"
	reflectionsCollection = "reflections"
	settingsCollection    = "settings"
	tasksCollection       = "calendarTodos"
)

type FirestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) (*FirestoreRepository, error) {
	if client == nil {
		return nil, errors.New("storage: nil firestore client")
	}
	return &FirestoreRepository{client: client}, nil
}

// NewFirebaseApp builds the app shared by the Firestore repository and token verification.
func NewFirebaseApp(ctx context.Context, credentialsFile, projectID string) (*firebase.App, error) {
	opts := make([]option.ClientOption, 0, 1)
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

func OpenFirestore(ctx context.Context, app *firebase.App) (*FirestoreRepository, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}
	return NewFirestoreRepository(client)
}

func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}

type goalDoc struct {
	UserID    string    `firestore:"userId"`
	Title     string    `firestore:"title"`
	Duration  string    `firestore:"duration"`
	StartDate string    `firestore:"startDate"`
	EndDate   string    `firestore:"endDate"`
	Status    string    `firestore:"status"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type reflectionDoc struct {
	UserID    string    `firestore:"userId"`
	Date      string    `firestore:"date"`
	Memo      string    `firestore:"memo"`
	Todos     []string  `firestore:"todos"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type taskDoc struct {
	ID        string `firestore:"id"`
	Text      string `firestore:"text"`
	Completed bool   `firestore:"completed"`
	Date      string `firestore:"date"`
	GoalID    string `firestore:"goalId"`
}

type taskListDoc struct {
	Items     []taskDoc `firestore:"items"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func toGoalDoc(g model.Goal) goalDoc {
	return goalDoc{
		UserID:    g.UserID,
		Title:     g.Title,
		Duration:  string(g.Duration),
		StartDate: g.StartDate,
		EndDate:   g.EndDate,
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func fromGoalDoc(id string, d goalDoc) model.Goal {
	return model.Goal{
		ID:        id,
		UserID:    d.UserID,
		Title:     d.Title,
		Duration:  model.GoalDuration(d.Duration),
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    model.GoalStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func reflectionDocID(userID, date string) string {
	return userID + "_" + date
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (r *FirestoreRepository) CreateGoal(ctx context.Context, in model.Goal) error {
	_, err := r.client.Collection(goalsCollection).Doc(in.ID).Create(ctx, toGoalDoc(in))
	return err
}

func (r *FirestoreRepository) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	snap, err := r.client.Collection(goalsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return model.Goal{}, ErrNotFound
		}
		return model.Goal{}, err
	}
	var doc goalDoc
	if err := snap.DataTo(&doc); err != nil {
		return model.Goal{}, fmt.Errorf("decode goal %s: %w", id, err)
	}
	return fromGoalDoc(snap.Ref.ID, doc), nil
}

func (r *FirestoreRepository) UpdateGoal(ctx context.Context, in model.Goal) error {
	_, err := r.client.Collection(goalsCollection).Doc(in.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: in.Title},
		{Path: "duration", Value: string(in.Duration)},
		{Path: "startDate", Value: in.StartDate},
		{Path: "endDate", Value: in.EndDate},
		{Path: "status", Value: string(in.Status)},
		{Path: "updatedAt", Value: in.UpdatedAt},
	})
	if err != nil && isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *FirestoreRepository) DeleteGoal(ctx context.Context, id string) error {
	ref := r.client.Collection(goalsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

// ListGoals sorts client side so no composite index is needed.
func (r *FirestoreRepository) ListGoals(ctx context.Context, filter GoalListFilter) ([]model.Goal, error) {
	q := r.client.Collection(goalsCollection).Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.Goal, 0, len(snaps))
	for _, snap := range snaps {
		var doc goalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode goal %s: %w", snap.Ref.ID, err)
		}
		out = append(out, fromGoalDoc(snap.Ref.ID, doc))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *FirestoreRepository) UpsertReflection(ctx context.Context, in model.Reflection) (model.Reflection, error) {
	id := reflectionDocID(in.UserID, in.Date)
	ref := r.client.Collection(reflectionsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		created := in.CreatedAt
		if err == nil {
			var existing reflectionDoc
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			created = existing.CreatedAt
		} else if !isNotFound(err) {
			return err
		}
		return tx.Set(ref, reflectionDoc{
			UserID:    in.UserID,
			Date:      in.Date,
			Memo:      in.Memo,
			Todos:     nonNilStrings(in.Todos),
			CreatedAt: created,
			UpdatedAt: in.UpdatedAt,
		})
	})
	if err != nil {
		return model.Reflection{}, err
	}
	return r.GetReflectionByDate(ctx, in.UserID, in.Date)
}

func (r *FirestoreRepository) GetReflectionByDate(ctx context.Context, userID, date string) (model.Reflection, error) {
	snap, err := r.client.Collection(reflectionsCollection).Doc(reflectionDocID(userID, date)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return model.Reflection{}, ErrNotFound
		}
		return model.Reflection{}, err
	}
	return decodeReflection(snap)
}

func (r *FirestoreRepository) ListReflections(ctx context.Context, filter ReflectionListFilter) ([]model.Reflection, error) {
	q := r.client.Collection(reflectionsCollection).Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.Reflection, 0, len(snaps))
	for _, snap := range snaps {
		item, err := decodeReflection(snap)
		if err != nil {
			return nil, err
		}
		if filter.From != "" && item.Date < filter.From {
			continue
		}
		if filter.To != "" && item.Date > filter.To {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func decodeReflection(snap *firestore.DocumentSnapshot) (model.Reflection, error) {
	var doc reflectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return model.Reflection{}, fmt.Errorf("decode reflection %s: %w", snap.Ref.ID, err)
	}
	return model.Reflection{
		ID:        snap.Ref.ID,
		UserID:    doc.UserID,
		Date:      doc.Date,
		Memo:      doc.Memo,
		Todos:     doc.Todos,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *FirestoreRepository) GetSetting(ctx context.Context, userID, key string) (string, error) {
	snap, err := r.client.Collection(settingsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	v, ok := snap.Data()[key].(string)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (r *FirestoreRepository) SetSetting(ctx context.Context, userID, key, value string) error {
	_, err := r.client.Collection(settingsCollection).Doc(userID).Set(ctx, map[string]interface{}{key: value}, firestore.MergeAll)
	return err
}

func (r *FirestoreRepository) TaskStore(userID string) TaskStore {
	return &firestoreTaskStore{ref: r.client.Collection(tasksCollection).Doc(userID)}
}

type firestoreTaskStore struct {
	ref *firestore.DocumentRef
}

func (s *firestoreTaskStore) LoadAll(ctx context.Context) ([]model.TaskItem, error) {
	snap, err := s.ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return []model.TaskItem{}, nil
		}
		return nil, err
	}
	var doc taskListDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	out := make([]model.TaskItem, 0, len(doc.Items))
	for _, d := range doc.Items {
		out = append(out, model.TaskItem{ID: d.ID, Text: d.Text, Completed: d.Completed, Date: d.Date, GoalID: d.GoalID})
	}
	return out, nil
}

func (s *firestoreTaskStore) SaveAll(ctx context.Context, items []model.TaskItem) error {
	doc := taskListDoc{Items: make([]taskDoc, 0, len(items)), UpdatedAt: time.Now()}
	for _, item := range items {
		doc.Items = append(doc.Items, taskDoc{ID: item.ID, Text: item.Text, Completed: item.Completed, Date: item.Date, GoalID: item.GoalID})
	}
	_, err := s.ref.Set(ctx, doc)
	return err
}
