package database

import (
	"fmt"
	"os"

	"mm-shipping/logger"
	"mm-shipping/models/counter"
	"mm-shipping/models/driver"
	"mm-shipping/models/log"
	"mm-shipping/models/shipment"
	"mm-shipping/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	dbUser := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, dbUser, password, database, sslmode)

	var err error
	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey so
	// controllers can answer 409 instead of 500.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createForeignKeyConstraints(); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return nil, err
	}
	logger.Success("All foreign key constraints created successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&user.User{},
		&driver.Driver{},
		&counter.Counter{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&shipment.Shipment{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Event and logging tables
	remainingModels := []interface{}{
		&shipment.ShipmentStatusEvent{},
		&shipment.ShipmentEvent{},
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_shipments_tracking_number", "CREATE UNIQUE INDEX IF NOT EXISTS idx_shipments_tracking_number ON shipments(tracking_number)"},
		{"idx_shipments_parcel_id", "CREATE UNIQUE INDEX IF NOT EXISTS idx_shipments_parcel_id ON shipments(parcel_id)"},
		{"idx_shipments_parcel_id_short", "CREATE UNIQUE INDEX IF NOT EXISTS idx_shipments_parcel_id_short ON shipments(parcel_id_short)"},
		{"idx_shipments_status", "CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status)"},
		{"idx_shipments_warehouse_status", "CREATE INDEX IF NOT EXISTS idx_shipments_warehouse_status ON shipments(warehouse_status)"},
		{"idx_shipments_created_at", "CREATE INDEX IF NOT EXISTS idx_shipments_created_at ON shipments(created_at)"},
		{"idx_shipment_status_events_shipment_id", "CREATE INDEX IF NOT EXISTS idx_shipment_status_events_shipment_id ON shipment_status_events(shipment_id)"},
		{"idx_shipment_events_shipment_id", "CREATE INDEX IF NOT EXISTS idx_shipment_events_shipment_id ON shipment_events(shipment_id)"},
		{"idx_drivers_uuid", "CREATE INDEX IF NOT EXISTS idx_drivers_uuid ON drivers(uuid)"},
		{"idx_drivers_driver_type", "CREATE INDEX IF NOT EXISTS idx_drivers_driver_type ON drivers(driver_type)"},
		{"idx_users_uuid", "CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)"},
		{"idx_counters_name", "CREATE UNIQUE INDEX IF NOT EXISTS idx_counters_name ON counters(name)"},
		{"idx_logs_created_at", "CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)"},
	}

	for _, idx := range indexes {
		if err := DB.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration
func createForeignKeyConstraints() error {
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_shipments_sender",
			sql: `ALTER TABLE shipments ADD CONSTRAINT fk_shipments_sender
				  FOREIGN KEY (sender_id) REFERENCES users(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_shipments_pickup_driver",
			sql: `ALTER TABLE shipments ADD CONSTRAINT fk_shipments_pickup_driver
				  FOREIGN KEY (pickup_driver_id) REFERENCES drivers(id)
				  ON UPDATE CASCADE ON DELETE SET NULL`,
		},
		{
			name: "fk_shipments_delivery_driver",
			sql: `ALTER TABLE shipments ADD CONSTRAINT fk_shipments_delivery_driver
				  FOREIGN KEY (delivery_driver_id) REFERENCES drivers(id)
				  ON UPDATE CASCADE ON DELETE SET NULL`,
		},
	}

	for _, constraint := range constraints {
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := DB.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := DB.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
