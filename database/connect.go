package database

import (
	"context"
	"fmt"
	"log"

	"storepay/config"
	"storepay/dto/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var MongoClient *mongo.Client

// ConnectDB opens postgres and migrates the ledger schema.
func ConnectDB() {
	var err error

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.Config("DB_HOST", "localhost"),
		config.Config("DB_USER", ""),
		config.Config("DB_PASSWORD", ""),
		config.Config("DB_NAME", "storepay"),
		config.Config("DB_PORT", "5432"))

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect to database")
	}

	log.Println("Connection opened to database")

	err = DB.AutoMigrate(&model.User{}, &model.PaymentTransaction{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrated")
}

// SetupMongoDB connects the audit-trail client.
func SetupMongoDB() {
	uri := config.Config("MONGODB_URI", "mongodb://localhost:27017")
	var err error
	MongoClient, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		panic("failed to connect to MongoDB")
	}

	log.Println("Connected to MongoDB")
}

// GetCollection returns a mongo collection handle.
func GetCollection(databaseName, collectionName string) *mongo.Collection {
	return MongoClient.Database(databaseName).Collection(collectionName)
}
