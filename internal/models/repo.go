package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var Validate = validator.New()

const (
	ProfileTable     = "profiles"
	EventsTable      = "events"
	EventImagesTable = "event_images"
	InterestsTable   = "interests"
	GroupsTable      = "groups"
	AlbumsTable      = "albums"
	DBName           = "gatherly"
)

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
	signedURLTTL   int
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string, signedURLTTL int) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
		signedURLTTL:   signedURLTTL,
	}
}

// GetAuthenticatedClient returns a Supabase client with the given access token so row level
// policies apply to the caller.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if accessToken == "" || su.url == "" || su.key == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}

func (mdb *MongodbRepo) GetCollection(dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, errMongoNotInitialized
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

// PostgresRepo talks to the same database as Supabase over a direct connection. It is used
// for writes that have to happen in one transaction.
type PostgresRepo struct {
	db *gorm.DB
}

func PostgresNewRepo(db *gorm.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}
