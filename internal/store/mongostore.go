package store

// MongoStore implements Store against a MongoDB collection per table, using
// go.mongodb.org/mongo-driver (present as an indirect dependency across the
// wider retrieval pack — see DESIGN.md). No sample usage of the driver
// existed in the pack to imitate line-for-line, so this follows the
// driver's own documented idioms: one *mongo.Client shared across
// collections, bson documents, context-scoped calls.

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"provenance-chain/internal/perr"
)

type mongoRow struct {
	IndexValue    string `bson:"indexValue"`
	Doc           []byte `bson:"doc"`
	StartBlockNum int64  `bson:"startBlockNum"`
	EndBlockNum   int64  `bson:"endBlockNum"`
}

type mongoBlock struct {
	BlockNum int64  `bson:"blockNum"`
	BlockID  string `bson:"blockId"`
}

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// DialMongo connects to a MongoDB instance at uri and returns a MongoStore
// backed by database dbName.
func DialMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, perr.Transient("mongo_connect", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, perr.Transient("mongo_ping", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) collection(table Table) *mongo.Collection {
	return s.db.Collection(string(table))
}

func (s *MongoStore) BlockUpsert(ctx context.Context, table Table, indexValue string, doc []byte, blockNum int64) error {
	coll := s.collection(table)

	var existing mongoRow
	err := coll.FindOne(ctx, bson.M{"indexValue": indexValue, "endBlockNum": MaxBlockNum, "startBlockNum": blockNum}).Decode(&existing)
	if err == nil {
		return nil // idempotent replay
	}
	if err != mongo.ErrNoDocuments {
		return perr.Transient("mongo_find_one", err)
	}

	if _, err := coll.UpdateMany(ctx,
		bson.M{"indexValue": indexValue, "endBlockNum": MaxBlockNum},
		bson.M{"$set": bson.M{"endBlockNum": blockNum}},
	); err != nil {
		return perr.Transient("mongo_update_many", err)
	}

	if _, err := coll.InsertOne(ctx, mongoRow{
		IndexValue:    indexValue,
		Doc:           doc,
		StartBlockNum: blockNum,
		EndBlockNum:   MaxBlockNum,
	}); err != nil {
		return perr.Transient("mongo_insert_one", err)
	}
	return nil
}

func (s *MongoStore) AsOf(ctx context.Context, table Table, indexValue string, blockNum int64) (Row, bool, error) {
	var r mongoRow
	err := s.collection(table).FindOne(ctx, bson.M{
		"indexValue":    indexValue,
		"startBlockNum": bson.M{"$lte": blockNum},
		"endBlockNum":   bson.M{"$gt": blockNum},
	}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, perr.Transient("mongo_find_one", err)
	}
	return toRow(r), true, nil
}

func (s *MongoStore) Live(ctx context.Context, table Table, indexValue string) (Row, bool, error) {
	var r mongoRow
	err := s.collection(table).FindOne(ctx, bson.M{"indexValue": indexValue, "endBlockNum": MaxBlockNum}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, perr.Transient("mongo_find_one", err)
	}
	return toRow(r), true, nil
}

func (s *MongoStore) ListLive(ctx context.Context, table Table) ([]Row, error) {
	cur, err := s.collection(table).Find(ctx, bson.M{"endBlockNum": MaxBlockNum})
	if err != nil {
		return nil, perr.Transient("mongo_find", err)
	}
	defer cur.Close(ctx)

	var out []Row
	for cur.Next(ctx) {
		var r mongoRow
		if err := cur.Decode(&r); err != nil {
			return nil, perr.Transient("mongo_decode", err)
		}
		out = append(out, toRow(r))
	}
	if err := cur.Err(); err != nil {
		return nil, perr.Transient("mongo_cursor", err)
	}
	return out, nil
}

func (s *MongoStore) InsertBlock(ctx context.Context, blockNum int64, blockID string) error {
	_, err := s.collection("blocks").InsertOne(ctx, mongoBlock{BlockNum: blockNum, BlockID: blockID})
	if err != nil {
		return perr.Transient("mongo_insert_block", err)
	}
	return nil
}

func (s *MongoStore) CurrentBlock(ctx context.Context) (int64, bool, error) {
	opts := options.FindOne().SetSort(bson.M{"blockNum": -1})
	var b mongoBlock
	err := s.collection("blocks").FindOne(ctx, bson.M{}, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, perr.Transient("mongo_find_one", err)
	}
	return b.BlockNum, true, nil
}

func toRow(r mongoRow) Row {
	return Row{IndexValue: r.IndexValue, Doc: r.Doc, StartBlockNum: r.StartBlockNum, EndBlockNum: r.EndBlockNum}
}
