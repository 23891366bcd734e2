package utils

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"Miguel", "Lucia", "Tomas", "Ana", "Rafael", "Teresa", "Pablo", "Ines",
	"Francisco", "Clara", "Diego", "Rosa", "Andres", "Carmen", "Javier", "Pilar",
	"Antonio", "Marta", "Sergio", "Elena",
}

var lastNames = []string{
	"Santos", "Ferreira", "Moreno", "Iglesias", "Navarro", "Silva", "Castillo",
	"Vega", "Romero", "Delgado", "Pereira", "Fuentes", "Cruz", "Molina", "Serrano",
}

func GenerateRandomFullName() string {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]
	return first + " " + last
}

var roles = []domain.Role{
	domain.RoleGuide,
	domain.RoleManager,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromFullName(fullName string) string {
	username := ""
	for _, r := range fullName {
		if r == ' ' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		username += string(r)
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	username := GenerateUsernameFromFullName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var mediaTypes = []string{"image", "video"}

func GenerateRandomMediaPayload() json.RawMessage {
	payload := domain.MediaPayload{
		Title:       "Cloister view " + GenerateRandomID(3, 3),
		Description: "Captured during the morning rounds " + GenerateRandomID(8, 4),
		MediaType:   mediaTypes[rand.Intn(len(mediaTypes))],
		URL:         "https://media.example.org/" + GenerateRandomID(12, 4) + ".jpg",
	}

	raw, _ := json.Marshal(payload)
	return raw
}

// GenerateRandomDaysOfWeek picks a non-empty random subset of 0..6 with a
// Fisher-Yates shuffle.
func GenerateRandomDaysOfWeek() []int32 {
	days := []int32{0, 1, 2, 3, 4, 5, 6}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1

	return days[:n]
}

func GenerateRandomMassSchedulePayload() json.RawMessage {
	payload := domain.MassSchedulePayload{
		DaysOfWeek: GenerateRandomDaysOfWeek(),
		Time:       fmt.Sprintf("%02d:%02d:00", rand.Intn(12)+6, rand.Intn(4)*15),
		Location:   "Main chapel " + GenerateRandomID(2, 2),
	}

	raw, _ := json.Marshal(payload)
	return raw
}

func GenerateRandomEventPayload() json.RawMessage {
	start := time.Now().AddDate(0, 0, rand.Intn(60)+1)
	end := start.AddDate(0, 0, rand.Intn(3))

	payload := domain.EventPayload{
		Title:       "Candlelight procession " + GenerateRandomID(3, 3),
		Description: "Annual gathering " + GenerateRandomID(8, 4),
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		StartTime:   "18:00:00",
		EndTime:     "21:30:00",
	}

	raw, _ := json.Marshal(payload)
	return raw
}

func GenerateRandomNearbyPlacePayload() json.RawMessage {
	payload := domain.NearbyPlacePayload{
		Name:           "Pilgrim hostel " + GenerateRandomID(3, 3),
		Category:       "lodging",
		Address:        fmt.Sprintf("%d Camino Real", rand.Intn(200)+1),
		Latitude:       42.0 + rand.Float64(),
		Longitude:      -8.0 + rand.Float64(),
		DistanceMeters: int32(rand.Intn(5000) + 50),
	}

	raw, _ := json.Marshal(payload)
	return raw
}

func GenerateRandomContentPayload(kind domain.ContentKind) json.RawMessage {
	switch kind {
	case domain.KindMedia:
		return GenerateRandomMediaPayload()
	case domain.KindMassSchedule:
		return GenerateRandomMassSchedulePayload()
	case domain.KindEvent:
		return GenerateRandomEventPayload()
	case domain.KindNearbyPlace:
		return GenerateRandomNearbyPlacePayload()
	default:
		return nil
	}
}

// GenerateRandomShifts produces a valid weekly schedule: distinct days, start
// strictly before end.
func GenerateRandomShifts() []domain.ShiftDefinition {
	days := GenerateRandomDaysOfWeek()

	shifts := make([]domain.ShiftDefinition, 0, len(days))
	for _, day := range days {
		startHour := rand.Intn(12) + 6
		endHour := startHour + rand.Intn(6) + 1

		shifts = append(shifts, domain.ShiftDefinition{
			DayOfWeek: day,
			StartTime: fmt.Sprintf("%02d:00:00", startHour),
			EndTime:   fmt.Sprintf("%02d:00:00", endHour),
		})
	}

	return shifts
}
