package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample companies, data types and token packages for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGormDB(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"preferences", "token_transactions", "data_sharing_policies", "companies", "data_types", "token_packages"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing seed data")
		}

		dataTypes := []struct {
			Name      string
			Category  string
			Desc      string
			Sensitive bool
		}{
			{"email", "contact", "email address and mailbox metadata", false},
			{"location", "behavioral", "device location history", true},
			{"browsing-history", "behavioral", "visited pages and search queries", false},
			{"purchase-history", "financial", "orders and payment history", false},
			{"financial-transactions", "financial", "bank and card transaction records", true},
			{"health-records", "medical", "diagnoses, prescriptions and lab results", true},
			{"contact-info", "contact", "phone number and postal address", false},
		}

		for _, dt := range dataTypes {
			var exists int
			row := db.Raw("SELECT 1 FROM data_types WHERE name = ?", dt.Name).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO data_types (name, category, description, is_sensitive, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
					dt.Name, dt.Category, dt.Desc, dt.Sensitive).Error; err != nil {
					log.Fatalf("failed to insert data type %s: %v", dt.Name, err)
				}
				fmt.Printf("Seeded data type: %s\n", dt.Name)
			}
		}

		companies := []struct {
			ID       string
			Name     string
			Industry string
			Desc     string
			Policies []struct {
				DataType string
				Purpose  string
			}
		}{
			{
				ID: "tech-corp", Name: "TechCorp", Industry: "technology",
				Desc: "Consumer software and cloud services",
				Policies: []struct {
					DataType string
					Purpose  string
				}{
					{"email", "account notifications and product updates"},
					{"location", "regional content and fraud detection"},
					{"browsing-history", "personalized recommendations"},
				},
			},
			{
				ID: "finance-hub", Name: "FinanceHub", Industry: "financial services",
				Desc: "Personal finance and payment processing",
				Policies: []struct {
					DataType string
					Purpose  string
				}{
					{"email", "statements and alerts"},
					{"financial-transactions", "spending insights and credit scoring"},
					{"purchase-history", "cashback and partner offers"},
				},
			},
			{
				ID: "health-plus", Name: "HealthPlus", Industry: "healthcare",
				Desc: "Telemedicine and health tracking",
				Policies: []struct {
					DataType string
					Purpose  string
				}{
					{"email", "appointment reminders"},
					{"health-records", "care coordination between providers"},
					{"location", "nearby clinic suggestions"},
				},
			},
		}

		for _, c := range companies {
			var exists int
			row := db.Raw("SELECT 1 FROM companies WHERE id = ?", c.ID).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO companies (id, name, industry, description, created_at, updated_at) VALUES (?, ?, ?, ?, now(), now())",
				c.ID, c.Name, c.Industry, c.Desc).Error; err != nil {
				log.Fatalf("failed to insert company %s: %v", c.Name, err)
			}

			for i, p := range c.Policies {
				if err := db.Exec("INSERT INTO data_sharing_policies (id, company_id, data_type, purpose, third_parties, description, position, created_at, updated_at) VALUES (?, ?, ?, ?, '[]', '', ?, now(), now())",
					uuid.NewString(), c.ID, p.DataType, p.Purpose, i).Error; err != nil {
					log.Fatalf("failed to insert policy %s/%s: %v", c.ID, p.DataType, err)
				}
			}
			fmt.Printf("Seeded company: %s (%d policies)\n", c.Name, len(c.Policies))
		}

		packages := []struct {
			ID         string
			Name       string
			Amount     int64
			PriceCents int64
			Desc       string
		}{
			{"starter", "Starter", 50, 499, "enough for a handful of targeted changes"},
			{"standard", "Standard", 200, 1499, "covers regular preference upkeep"},
			{"bulk", "Bulk", 1000, 4999, "for sweeping global preference rewrites"},
		}

		for _, p := range packages {
			var exists int
			row := db.Raw("SELECT 1 FROM token_packages WHERE id = ?", p.ID).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO token_packages (id, name, amount, price_cents, description) VALUES (?, ?, ?, ?, ?)",
					p.ID, p.Name, p.Amount, p.PriceCents, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert token package %s: %v", p.ID, err)
				}
				fmt.Printf("Seeded token package: %s\n", p.Name)
			}
		}

		demoEmail := "demo@mail.com"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", demoEmail).Row()
		if err := row.Scan(&exists); err != nil {
			hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
			if err := db.Exec("INSERT INTO users (email, name, password_hash, tokens, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				demoEmail, "Demo User", string(hash), cfg.Tokens.SignupGrant).Error; err != nil {
				log.Fatalf("failed to insert demo user: %v", err)
			}

			var demoID int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", demoEmail).Row().Scan(&demoID); err != nil {
				log.Fatalf("failed to lookup demo user id: %v", err)
			}
			if err := db.Exec("INSERT INTO token_transactions (id, user_id, kind, amount, balance_after, description, created_at) VALUES (?, ?, 'grant', ?, ?, 'signup grant', now())",
				uuid.NewString(), demoID, cfg.Tokens.SignupGrant, cfg.Tokens.SignupGrant).Error; err != nil {
				log.Fatalf("failed to insert demo grant ledger row: %v", err)
			}
			fmt.Println("Seeded demo user:", demoEmail)
		}

		fmt.Println("Seed data loaded successfully")
	},
}
