package services

import (
	"math/rand"

	"speakcoach/models"
)

var maleNames = []string{"Marcus", "Oliver", "Ethan", "Jayden", "Lucas", "Nathan", "Ryan", "Daniel"}

var femaleNames = []string{"Sophia", "Chloe", "Emily", "Hannah", "Grace", "Natalie", "Zoe", "Rachel"}

// GenerateParticipants builds the three simulated members of a discussion:
// a supporter, an opposer and a mediator. All three names are distinct.
func GenerateParticipants(rng *rand.Rand) []models.Participant {
	stances := []string{models.StanceSupport, models.StanceOppose, models.StanceMediator}
	used := map[string]bool{}
	participants := make([]models.Participant, 0, len(stances))

	for _, stance := range stances {
		gender := "female"
		pool := femaleNames
		if rng.Intn(2) == 0 {
			gender = "male"
			pool = maleNames
		}

		name := pool[rng.Intn(len(pool))]
		for used[name] {
			name = pool[rng.Intn(len(pool))]
		}
		used[name] = true

		participants = append(participants, models.Participant{
			Name:   name,
			Gender: gender,
			Stance: stance,
		})
	}

	return participants
}
