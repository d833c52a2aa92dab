package database

import (
	"log"
	"time"

	config "github.com/abelgirma/gojo-travel/configs"
	"github.com/abelgirma/gojo-travel/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	log.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	log.Println("✅ Database migrated successfully")
}

type seedListing struct {
	Name          string
	Description   string
	Location      string
	PricePerNight float64
}

var sampleListings = []seedListing{
	{"Cozy Apartment", "A nice and cozy apartment in the city center.", "Addis Ababa", 50.00},
	{"Beach House", "Enjoy the sea breeze in this beautiful beach house.", "Hawassa", 120.00},
	{"Mountain Cabin", "A peaceful retreat in the mountains.", "Lalibela", 80.00},
}

// Seed loads the sample host, guest, listings and one pending booking.
// Safe to run repeatedly.
func Seed() {
	host := getOrCreateUser("host@gojotravel.et", "Hana", "Tesfaye", "host")
	guest := getOrCreateUser("guest@gojotravel.et", "Abel", "Girma", "guest")

	listingsByName := make(map[string]models.Listing, len(sampleListings))
	for _, data := range sampleListings {
		var listing models.Listing
		err := DB.Where("host_id = ? AND name = ?", host.ID, data.Name).
			Attrs(models.Listing{
				Description:   data.Description,
				Location:      data.Location,
				PricePerNight: data.PricePerNight,
			}).
			FirstOrCreate(&listing, models.Listing{HostID: host.ID, Name: data.Name}).Error
		if err != nil {
			log.Printf("🔥 Failed to seed listing %q: %v", data.Name, err)
			continue
		}
		listingsByName[listing.Name] = listing
	}

	// Three nights at the Beach House, total computed from the nightly price.
	beachHouse, ok := listingsByName["Beach House"]
	if !ok {
		return
	}
	checkIn := time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	checkOut := checkIn.AddDate(0, 0, 3)
	nights := float64(3)

	var booking models.Booking
	err := DB.Where("listing_id = ? AND user_id = ? AND check_in_date = ?", beachHouse.ID, guest.ID, checkIn).
		Attrs(models.Booking{
			Status:       models.BookingPending,
			CheckOutDate: checkOut,
			TotalAmount:  nights * beachHouse.PricePerNight,
		}).
		FirstOrCreate(&booking, models.Booking{
			ListingID:   beachHouse.ID,
			UserID:      guest.ID,
			CheckInDate: checkIn,
		}).Error
	if err != nil {
		log.Printf("🔥 Failed to seed booking: %v", err)
		return
	}

	log.Println("✅ Sample data seeded.")
}

func getOrCreateUser(email, firstName, lastName, role string) models.User {
	var user models.User
	if err := DB.Where("email = ?", email).First(&user).Error; err == nil {
		return user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(config.ConfigOr("SEED_USER_PASSWORD", "password")), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash seed password: %v", err)
	}

	user = models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
	}
	if err := DB.Create(&user).Error; err != nil {
		log.Fatalf("🔥 Failed to seed user %s: %v", email, err)
	}
	return user
}
