package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/digitalkookiehub/hireez/internal/models"
)

const bankCollection = "question_bank"

// BankRepo is the Mongo-backed question bank.
type BankRepo struct {
	col *mongo.Collection
}

func NewBankRepo(db *mongo.Database) *BankRepo {
	return &BankRepo{col: db.Collection(bankCollection)}
}

func (r *BankRepo) SampleTexts(ctx context.Context, domain string, limit int) ([]string, error) {
	filter := bson.M{"is_active": true}
	if domain != "" {
		filter["domain"] = domain
	}

	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	texts := make([]string, 0, limit)
	for cursor.Next(ctx) {
		if len(texts) >= limit {
			break
		}
		var q models.BankQuestion
		if err := cursor.Decode(&q); err != nil {
			return nil, err
		}
		texts = append(texts, q.QuestionText)
	}
	return texts, cursor.Err()
}

func (r *BankRepo) RandomActive(ctx context.Context, domain string, count int) ([]models.BankQuestion, error) {
	match := bson.M{"is_active": true}
	if domain != "" {
		match["domain"] = domain
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$sample": bson.M{"size": count}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []models.BankQuestion
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
