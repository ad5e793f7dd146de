package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

const agentCollection = "agents"

// AgentRepository persists agent records in the agents collection. Unique
// indexes on email, phone, and license_number are the final arbiter for
// uniqueness; violations surface as *domain.ConflictError.
type AgentRepository struct {
	coll *mongo.Collection
}

func NewAgentRepository(db *mongo.Database) *AgentRepository {
	return &AgentRepository{coll: db.Collection(agentCollection)}
}

type agentDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	FullName        string             `bson:"full_name"`
	Email           string             `bson:"email"`
	Phone           string             `bson:"phone"`
	LicenseNumber   string             `bson:"license_number"`
	PasswordHash    string             `bson:"password_hash"`
	Experience      string             `bson:"experience,omitempty"`
	Specialization  string             `bson:"specialization,omitempty"`
	Location        string             `bson:"location,omitempty"`
	About           string             `bson:"about,omitempty"`
	ProfilePhoto    string             `bson:"profile_photo,omitempty"`
	IDDocument      string             `bson:"id_document"`
	LicenseDocument string             `bson:"license_document"`
	Status          string             `bson:"status"`
	StatusReason    string             `bson:"status_reason,omitempty"`
	StatusUpdatedAt time.Time          `bson:"status_updated_at,omitempty"`
	StatusUpdatedBy string             `bson:"status_updated_by,omitempty"`
	Rating          float64            `bson:"rating"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (d *agentDoc) toDomain() *domain.Agent {
	return &domain.Agent{
		ID:              d.ID.Hex(),
		FullName:        d.FullName,
		Email:           d.Email,
		Phone:           d.Phone,
		LicenseNumber:   d.LicenseNumber,
		PasswordHash:    d.PasswordHash,
		Experience:      d.Experience,
		Specialization:  d.Specialization,
		Location:        d.Location,
		About:           d.About,
		ProfilePhoto:    d.ProfilePhoto,
		IDDocument:      d.IDDocument,
		LicenseDocument: d.LicenseDocument,
		Status:          domain.AgentStatus(d.Status),
		StatusReason:    d.StatusReason,
		StatusUpdatedAt: d.StatusUpdatedAt,
		StatusUpdatedBy: d.StatusUpdatedBy,
		Rating:          d.Rating,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := agentDoc{
		ID:              primitive.NewObjectID(),
		FullName:        agent.FullName,
		Email:           agent.Email,
		Phone:           agent.Phone,
		LicenseNumber:   agent.LicenseNumber,
		PasswordHash:    agent.PasswordHash,
		Experience:      agent.Experience,
		Specialization:  agent.Specialization,
		Location:        agent.Location,
		About:           agent.About,
		ProfilePhoto:    agent.ProfilePhoto,
		IDDocument:      agent.IDDocument,
		LicenseDocument: agent.LicenseDocument,
		Status:          string(agent.Status),
		Rating:          agent.Rating,
		CreatedAt:       agent.CreatedAt,
		UpdatedAt:       agent.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Field: duplicateField(err, map[string]string{
				"email":          "email",
				"phone":          "phone number",
				"license_number": "license number",
			})}
		}
		return nil, fmt.Errorf("insert agent: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *AgentRepository) FindByID(ctx context.Context, id string) (*domain.Agent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAgentNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AgentRepository) FindByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AgentRepository) FindConflict(ctx context.Context, email, phone, licenseNumber string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"phone": phone},
		bson.M{"license_number": licenseNumber},
	}})
}

func (r *AgentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc agentDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("find agent: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus applies the transition only if the stored status still equals
// expected. A concurrent transition that got there first leaves no matching
// document, which is reported as ErrInvalidTransition (the agent exists but
// moved on).
func (r *AgentRepository) UpdateStatus(ctx context.Context, id string, expected domain.AgentStatus, upd ports.AgentStatusUpdate) (*domain.Agent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAgentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(expected)},
		bson.M{"$set": bson.M{
			"status":            string(upd.Status),
			"status_reason":     upd.Reason,
			"status_updated_at": now,
			"status_updated_by": upd.UpdatedBy,
			"updated_at":        now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc agentDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			n, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
			if countErr != nil {
				return nil, fmt.Errorf("update status: %w", countErr)
			}
			if n == 0 {
				return nil, domain.ErrAgentNotFound
			}
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AgentRepository) UpdateProfile(ctx context.Context, id string, upd ports.AgentProfileUpdate) (*domain.Agent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAgentNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for field, val := range map[string]*string{
		"full_name":      upd.FullName,
		"experience":     upd.Experience,
		"specialization": upd.Specialization,
		"location":       upd.Location,
		"about":          upd.About,
	} {
		if val != nil {
			set[field] = *val
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc agentDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAgentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

// List returns a page of agents matching the filter and the total count,
// newest applications first.
func (r *AgentRepository) List(ctx context.Context, filter ports.AgentListFilter) ([]*domain.Agent, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count agents: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list agents: %w", err)
	}
	defer cur.Close(ctx)

	var agents []*domain.Agent
	for cur.Next(ctx) {
		var doc agentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode agent: %w", err)
		}
		agents = append(agents, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list agents: %w", err)
	}
	return agents, total, nil
}

// CountByStatus groups the collection by status in a single aggregation.
func (r *AgentRepository) CountByStatus(ctx context.Context) (map[domain.AgentStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer cur.Close(ctx)

	counts := make(map[domain.AgentStatus]int64)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode count: %w", err)
		}
		counts[domain.AgentStatus(row.Status)] = row.Count
	}
	return counts, cur.Err()
}

// EnsureIndexes creates the unique indexes that back uniqueness enforcement.
func (r *AgentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "license_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
