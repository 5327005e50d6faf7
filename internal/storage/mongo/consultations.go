package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// CreateConsultation inserts a consultation after checking both participants exist,
// since MongoDB has no foreign keys.
func (s *Store) CreateConsultation(ctx context.Context, c models.Consultation) (models.Consultation, error) {
	for _, id := range []int64{c.PatientID, c.DoctorID} {
		if _, err := s.FindByID(ctx, id); err != nil {
			return models.Consultation{}, fmt.Errorf("consultation participant %d: %w", id, err)
		}
	}
	if c.Status == "" {
		c.Status = models.StatusScheduled
	}
	id, err := s.nextID(ctx, consultationsCollection)
	if err != nil {
		return models.Consultation{}, err
	}
	doc := consultationDoc{
		ID:            id,
		PatientID:     c.PatientID,
		DoctorID:      c.DoctorID,
		ScheduledTime: c.ScheduledTime.UTC().Truncate(time.Millisecond),
		Status:        string(c.Status),
		Notes:         c.Notes,
		Diagnosis:     c.Diagnosis,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.db.Collection(consultationsCollection).InsertOne(ctx, doc); err != nil {
		return models.Consultation{}, fmt.Errorf("insert consultation: %w", err)
	}
	return s.GetConsultation(ctx, id)
}

func (s *Store) GetConsultation(ctx context.Context, id int64) (models.Consultation, error) {
	var doc consultationDoc
	if err := s.db.Collection(consultationsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Consultation{}, storage.ErrNotFound
		}
		return models.Consultation{}, fmt.Errorf("find consultation: %w", err)
	}
	named, err := s.withNames(ctx, []consultationDoc{doc})
	if err != nil {
		return models.Consultation{}, err
	}
	return named[0], nil
}

// UpdateConsultationStatus is a single-document compare-and-set on the status field.
func (s *Store) UpdateConsultationStatus(ctx context.Context, id int64, update models.StatusUpdate) (models.Consultation, error) {
	set := bson.M{"status": string(update.To)}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}
	if update.Diagnosis != nil {
		set["diagnosis"] = *update.Diagnosis
	}
	res, err := s.db.Collection(consultationsCollection).UpdateOne(ctx,
		bson.M{"_id": id, "status": string(update.From)},
		bson.M{"$set": set},
	)
	if err != nil {
		return models.Consultation{}, fmt.Errorf("update consultation status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetConsultation(ctx, id); err != nil {
			return models.Consultation{}, err
		}
		return models.Consultation{}, storage.ErrConflict
	}
	return s.GetConsultation(ctx, id)
}

func (s *Store) ListByDoctor(ctx context.Context, doctorID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listFor(ctx, "doctor_id", doctorID, status, limit)
}

func (s *Store) ListByPatient(ctx context.Context, patientID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listFor(ctx, "patient_id", patientID, status, limit)
}

func (s *Store) listFor(ctx context.Context, field string, id int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	filter := bson.M{field: id}
	if status != "" {
		filter["status"] = string(status)
	}
	direction := -1
	if status.Ascending() {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_time", Value: direction}, {Key: "_id", Value: direction}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findConsultations(ctx, filter, opts)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findConsultations(ctx, bson.M{}, opts)
}

func (s *Store) CountConsultations(ctx context.Context, status models.ConsultationStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	n, err := s.db.Collection(consultationsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return n, nil
}

func (s *Store) PatientSummaries(ctx context.Context) ([]models.PatientSummary, error) {
	patients, err := s.findUsers(ctx, bson.M{"role": string(models.RolePatient)})
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$patient_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last", Value: bson.D{{Key: "$max", Value: "$scheduled_time"}}},
		}}},
	}
	cursor, err := s.db.Collection(consultationsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate patient summaries: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		PatientID int64     `bson:"_id"`
		Count     int64     `bson:"count"`
		Last      time.Time `bson:"last"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode patient summaries: %w", err)
	}
	totals := make(map[int64]int, len(groups))
	for i, g := range groups {
		totals[g.PatientID] = i
	}

	out := make([]models.PatientSummary, 0, len(patients))
	for _, p := range patients {
		summary := models.PatientSummary{User: p.toModel()}
		if i, ok := totals[p.ID]; ok {
			summary.ConsultationCount = groups[i].Count
			last := groups[i].Last.UTC()
			summary.LastConsultation = &last
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Store) findConsultations(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Consultation, error) {
	cursor, err := s.db.Collection(consultationsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find consultations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []consultationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode consultations: %w", err)
	}
	return s.withNames(ctx, docs)
}

// withNames resolves participant names with one lookup per batch.
func (s *Store) withNames(ctx context.Context, docs []consultationDoc) ([]models.Consultation, error) {
	out := make([]models.Consultation, 0, len(docs))
	if len(docs) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(docs)*2)
	for _, d := range docs {
		ids = append(ids, d.PatientID, d.DoctorID)
	}
	users, err := s.findUsers(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FirstName + " " + u.LastName
	}

	for _, d := range docs {
		c := models.Consultation{
			ID:            d.ID,
			PatientID:     d.PatientID,
			DoctorID:      d.DoctorID,
			ScheduledTime: d.ScheduledTime.UTC(),
			Status:        models.ConsultationStatus(d.Status),
			Notes:         d.Notes,
			Diagnosis:     d.Diagnosis,
			CreatedAt:     d.CreatedAt.UTC(),
		}
		if name, ok := names[d.PatientID]; ok {
			c.PatientName = &name
		}
		if name, ok := names[d.DoctorID]; ok {
			doctor := "Dr. " + name
			c.DoctorName = &doctor
		}
		out = append(out, c)
	}
	return out, nil
}
