package app

import (
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout read by the seed command:
//
//	users:
//	  - username: admin
//	    email: admin@pnpsanjuan.gov.ph
//	    password: change-me-now
//	    role: admin
//	    first_name: Juan
//	    last_name: Dela Cruz
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Status    string `yaml:"status"`
	TwoFactor *bool  `yaml:"two_factor"` // defaults to true
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Rank      string `yaml:"rank"`
	Unit      string `yaml:"unit"`
	Station   string `yaml:"station"`
}

// ReadSeed decodes a seed file. Unknown keys are rejected so typos do not
// silently drop fields.
func ReadSeed(r io.Reader) ([]service.SeedUser, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	users := make([]service.SeedUser, 0, len(f.Users))
	for i, u := range f.Users {
		if u.Username == "" || u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: username, email and password are required", i)
		}
		twoFactor := true
		if u.TwoFactor != nil {
			twoFactor = *u.TwoFactor
		}
		users = append(users, service.SeedUser{
			NewUser: service.NewUser{
				Username:         u.Username,
				Email:            u.Email,
				Password:         u.Password,
				Role:             domain.Role(u.Role),
				Status:           domain.Status(u.Status),
				TwoFactorEnabled: twoFactor,
			},
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Rank:      u.Rank,
			Unit:      u.Unit,
			Station:   u.Station,
		})
	}
	return users, nil
}

// ReadSeedFile opens path and decodes it with ReadSeed.
func ReadSeedFile(path string) ([]service.SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeed(f)
}
