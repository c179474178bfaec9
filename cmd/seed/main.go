package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tably/internal/cancellation"
	"tably/internal/reservations"
	"tably/internal/shared/config"
	"tably/internal/shared/database"
	"tably/internal/tables"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Tably Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tableNames := []string{
		"idempotency_records",
		"reservations",
		"cancellation_policies",
		"restaurant_tables",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, name := range tableNames {
		fmt.Printf("  Truncating table: %s\n", name)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", name)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", name, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds a demo venue: floor plan, policies and a service date of bookings
func (s *Seeder) SeedAll() error {
	ctx := context.Background()
	venueID := "demo-venue"

	tableIDs, err := s.SeedTables(venueID)
	if err != nil {
		return fmt.Errorf("failed to seed tables: %w", err)
	}

	if err := s.SeedCancellationPolicies(venueID); err != nil {
		return fmt.Errorf("failed to seed cancellation policies: %w", err)
	}

	if err := s.SeedReservations(venueID, tableIDs); err != nil {
		return fmt.Errorf("failed to seed reservations: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedTables creates the demo floor plan: deuces, four-tops and large tables
func (s *Seeder) SeedTables(venueID string) ([]uint, error) {
	fmt.Println("  🪑 Seeding tables...")

	tablesData := []struct {
		number   string
		capacity int
	}{
		{"T1", 2},
		{"T2", 2},
		{"T3", 4},
		{"T4", 4},
		{"T5", 4},
		{"T6", 6},
		{"T7", 8},
	}

	var tableIDs []uint
	for _, tableData := range tablesData {
		table := tables.Table{
			VenueID:  venueID,
			Number:   tableData.number,
			Capacity: tableData.capacity,
		}

		if err := s.db.PostgreSQL.Create(&table).Error; err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", table.Number, err)
		}

		tableIDs = append(tableIDs, table.ID)
		fmt.Printf("    ✅ Created table: %s (seats %d)\n", table.Number, table.Capacity)
	}

	return tableIDs, nil
}

// SeedCancellationPolicies creates a tiered refund schedule for the venue
func (s *Seeder) SeedCancellationPolicies(venueID string) error {
	fmt.Println("  📋 Seeding cancellation policies...")

	policiesData := []struct {
		name         string
		hoursBefore  int
		penaltyType  string
		penaltyValue float64
	}{
		{"Same-day cancellation", 24, cancellation.PenaltyFullDeposit, 0},
		{"Short notice", 48, cancellation.PenaltyPartialDeposit, 50},
		{"Standard notice", 168, cancellation.PenaltyFixedAmount, 10},
	}

	for _, policyData := range policiesData {
		policy := cancellation.CancellationPolicy{
			VenueID:      venueID,
			Name:         policyData.name,
			HoursBefore:  policyData.hoursBefore,
			PenaltyType:  policyData.penaltyType,
			PenaltyValue: policyData.penaltyValue,
			Active:       true,
		}

		if err := s.db.PostgreSQL.Create(&policy).Error; err != nil {
			return fmt.Errorf("failed to create cancellation policy %s: %w", policy.Name, err)
		}

		fmt.Printf("    ✅ Created policy: %s (within %dh: %s)\n",
			policy.Name, policy.HoursBefore, policy.PenaltyType)
	}

	return nil
}

// SeedReservations fills tomorrow's dinner service with sample bookings
func (s *Seeder) SeedReservations(venueID string, tableIDs []uint) error {
	fmt.Println("  📆 Seeding reservations...")

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	dinner := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 18, 0, 0, 0, time.UTC)

	reservationsData := []struct {
		guestName   string
		guestPhone  string
		partySize   int
		startOffset time.Duration
		duration    int
		tableIndex  int // -1 leaves the booking for auto-assign
		deposit     float64
	}{
		{"Ava Lindqvist", "+31-6-1001", 2, 0, 90, 0, 0},
		{"Bram Okafor", "+31-6-1002", 4, 30 * time.Minute, 120, 2, 25},
		{"Chiara Rossi", "+31-6-1003", 2, time.Hour, 90, -1, 0},
		{"Daan Visser", "+31-6-1004", 6, 90 * time.Minute, 120, 5, 50},
		{"Esra Yilmaz", "+31-6-1005", 4, 2 * time.Hour, 90, -1, 0},
		{"Femke de Jong", "+31-6-1006", 8, 2 * time.Hour, 150, 6, 100},
	}

	for _, data := range reservationsData {
		reservation := reservations.Reservation{
			VenueID:         venueID,
			GuestName:       data.guestName,
			GuestPhone:      data.guestPhone,
			PartySize:       data.partySize,
			StartAt:         dinner.Add(data.startOffset),
			DurationMinutes: data.duration,
			Status:          reservations.StatusConfirmed,
			BookingSource:   "website",
		}
		if data.tableIndex >= 0 && data.tableIndex < len(tableIDs) {
			id := tableIDs[data.tableIndex]
			reservation.TableID = &id
		}
		if data.deposit > 0 {
			reservation.DepositAmount = data.deposit
			reservation.DepositPaid = true
			reservation.DepositMethod = "card"
		}

		if err := s.db.PostgreSQL.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation for %s: %w", data.guestName, err)
		}

		fmt.Printf("    ✅ Created reservation: %s (party of %d at %s)\n",
			data.guestName, data.partySize, reservation.StartAt.Format("15:04"))
	}

	return nil
}
