package seed

import "octofit/internal/models"

type hero struct {
	Name       string
	Email      string
	Alias      string
	Superpower string
}

// TeamMarvel and TeamDC are the seeded team names
const (
	TeamMarvel = "Team Marvel"
	TeamDC     = "Team DC"
)

var teams = []models.Team{
	{Name: TeamMarvel, Description: "Earth's Mightiest Heroes"},
	{Name: TeamDC, Description: "Justice League Unlimited"},
}

var rosters = map[string][]hero{
	TeamMarvel: {
		{"Iron Man", "tony.stark@marvel.com", "Tony Stark", "Genius intellect and powered armor"},
		{"Captain America", "steve.rogers@marvel.com", "Steve Rogers", "Super soldier serum"},
		{"Thor", "thor.odinson@marvel.com", "Thor Odinson", "God of Thunder"},
		{"Hulk", "bruce.banner@marvel.com", "Bruce Banner", "Superhuman strength"},
		{"Black Widow", "natasha.romanoff@marvel.com", "Natasha Romanoff", "Master spy and assassin"},
		{"Spider-Man", "peter.parker@marvel.com", "Peter Parker", "Spider abilities"},
		{"Doctor Strange", "stephen.strange@marvel.com", "Stephen Strange", "Master of mystic arts"},
		{"Black Panther", "tchalla@marvel.com", "T'Challa", "Enhanced abilities and vibranium suit"},
	},
	TeamDC: {
		{"Superman", "clark.kent@dc.com", "Clark Kent", "Flight, super strength, heat vision"},
		{"Batman", "bruce.wayne@dc.com", "Bruce Wayne", "Detective skills and high-tech gadgets"},
		{"Wonder Woman", "diana.prince@dc.com", "Diana Prince", "Amazon warrior abilities"},
		{"Flash", "barry.allen@dc.com", "Barry Allen", "Super speed"},
		{"Aquaman", "arthur.curry@dc.com", "Arthur Curry", "Underwater abilities and strength"},
		{"Green Lantern", "hal.jordan@dc.com", "Hal Jordan", "Power ring wielder"},
		{"Cyborg", "victor.stone@dc.com", "Victor Stone", "Cybernetic enhancements"},
		{"Shazam", "billy.batson@dc.com", "Billy Batson", "Magic-based powers"},
	},
}

var workouts = []models.Workout{
	{Name: "Cardio Blast", Description: "High-intensity cardio workout", DurationMinutes: 30, Difficulty: models.DifficultyIntermediate, CaloriesBurned: 300},
	{Name: "Strength Training", Description: "Full body strength workout", DurationMinutes: 45, Difficulty: models.DifficultyAdvanced, CaloriesBurned: 250},
	{Name: "Yoga Flow", Description: "Relaxing yoga session", DurationMinutes: 60, Difficulty: models.DifficultyBeginner, CaloriesBurned: 150},
	{Name: "HIIT Power", Description: "High-intensity interval training", DurationMinutes: 20, Difficulty: models.DifficultyExpert, CaloriesBurned: 400},
	{Name: "Core Crusher", Description: "Intense core workout", DurationMinutes: 15, Difficulty: models.DifficultyIntermediate, CaloriesBurned: 100},
	{Name: "Hero Sprint", Description: "Speed and agility training", DurationMinutes: 25, Difficulty: models.DifficultyAdvanced, CaloriesBurned: 280},
	{Name: "Power Lifting", Description: "Heavy weightlifting session", DurationMinutes: 50, Difficulty: models.DifficultyExpert, CaloriesBurned: 350},
	{Name: "Flexibility Focus", Description: "Stretching and mobility work", DurationMinutes: 30, Difficulty: models.DifficultyBeginner, CaloriesBurned: 80},
}

// ActivityTypes lists the activity kinds the generator draws from
var ActivityTypes = []string{"running", "cycling", "swimming", "weightlifting", "yoga", "boxing", "climbing", "crossfit"}

var distanceTypes = map[string]bool{"running": true, "cycling": true, "swimming": true}
