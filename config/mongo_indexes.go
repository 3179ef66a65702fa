package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates query and uniqueness indexes. Offer, approval,
// reaction and outbox uniqueness is what keeps retried writes from duplicating.
func EnsureMongoIndexes(dbName string) error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoClient.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		"candidates": {
			{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("by_job_status")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("by_status")},
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("by_created")},
		},
		"jobs": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "department", Value: 1}}, Options: options.Index().SetName("by_status_department")},
		},
		"interviews": {
			{Keys: bson.D{{Key: "candidate_id", Value: 1}, {Key: "scheduled_at", Value: 1}}, Options: options.Index().SetName("by_candidate_start")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}}, Options: options.Index().SetName("by_status_start")},
		},
		"offers": {
			{
				Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "job_id", Value: 1}},
				Options: options.Index().SetName("uniq_candidate_job").SetUnique(true),
			},
		},
		"offer_approvals": {
			{
				Keys:    bson.D{{Key: "offer_id", Value: 1}, {Key: "approver_id", Value: 1}},
				Options: options.Index().SetName("uniq_offer_approver").SetUnique(true),
			},
		},
		"comments": {
			{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("by_entity_created")},
		},
		"comment_reactions": {
			{
				Keys:    bson.D{{Key: "comment_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "emoji", Value: 1}},
				Options: options.Index().SetName("uniq_comment_user_emoji").SetUnique(true),
			},
		},
		"tasks": {
			{Keys: bson.D{{Key: "assignee_id", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("by_assignee_status")},
			{Keys: bson.D{{Key: "related_to.type", Value: 1}, {Key: "related_to.id", Value: 1}}, Options: options.Index().SetName("by_related")},
		},
		"outbox": {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetName("uniq_key").SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("by_status_created")},
		},
	}

	for col, idx := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Join(errors.New("indexes for "+col), err)
		}
	}
	return nil
}
