package services

import (
	"context"

	"geniustrading/logger"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"
)

// EnsureAdmin creates the bootstrap admin when no admin exists yet. It does
// nothing when password is empty; there is no default admin password.
func EnsureAdmin(ctx context.Context, store storage.Storage, auth *Auth, username, email, password string) error {
	log := logger.For("seed")
	if password == "" {
		return nil
	}
	n, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	u, err := auth.CreateAdmin(ctx, RegisterInput{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
	})
	if err != nil {
		return err
	}
	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("bootstrap admin created")
	return nil
}

var sampleTestimonials = []models.Testimonial{
	{
		Name:     "Sarah Johnson",
		Location: "New York, USA",
		Message:  "Genius Trading has transformed my investment portfolio. The returns are consistently above my expectations!",
		Rating:   5,
		Avatar:   utils.StringPtr("https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face"),
	},
	{
		Name:     "Michael Chen",
		Location: "Singapore",
		Message:  "Professional platform with excellent customer support. I've been investing for 2 years now.",
		Rating:   5,
		Avatar:   utils.StringPtr("https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face"),
	},
	{
		Name:     "Emma Rodriguez",
		Location: "Madrid, Spain",
		Message:  "The daily returns are amazing and the withdrawal process is very smooth. Highly recommended!",
		Rating:   5,
		Avatar:   utils.StringPtr("https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150&h=150&fit=crop&crop=face"),
	},
	{
		Name:     "David Kim",
		Location: "Seoul, South Korea",
		Message:  "I started with a small investment and now I'm making substantial profits every month.",
		Rating:   5,
		Avatar:   utils.StringPtr("https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face"),
	},
}

var sampleDepositAddresses = []models.DepositAddress{
	{Method: "bitcoin", Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"},
	{Method: "ethereum", Address: "0x742a4c4F44B98c86BC3d8F7A5F67E2E15b8B9B8B"},
	{Method: "usdt", Address: "TYASr3WzWWvMjPHChsj3YdYWkj3NwJN9hD"},
	{Method: "bank_transfer", Address: "Account: 1234567890, Bank: Genius Bank, Swift: GBNKUS33"},
}

// SeedSampleData fills empty testimonial and deposit address tables.
func SeedSampleData(ctx context.Context, store storage.Storage) error {
	log := logger.For("seed")

	existing, err := store.ListTestimonials(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, t := range sampleTestimonials {
			t := t
			if err := store.CreateTestimonial(ctx, &t); err != nil {
				return err
			}
		}
		log.Info().Int("count", len(sampleTestimonials)).Msg("sample testimonials created")
	}

	addrs, err := store.ListDepositAddresses(ctx)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		for _, a := range sampleDepositAddresses {
			a := a
			if err := store.CreateDepositAddress(ctx, &a); err != nil {
				return err
			}
		}
		log.Info().Int("count", len(sampleDepositAddresses)).Msg("sample deposit addresses created")
	}
	return nil
}
