package mongo

import (
	"errors"

	"github.com/hireloop/hireloop/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return utils.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return utils.ErrDuplicate
	default:
		return err
	}
}

func matchedOne(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
