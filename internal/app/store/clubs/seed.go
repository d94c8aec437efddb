package clubstore

import "github.com/dalemusser/clubhub/internal/domain/models"

// DefaultClubs is the catalog inserted into an empty clubs collection.
func DefaultClubs() []models.Club {
	return []models.Club{
		{
			Name:        "Coding Club",
			Description: "Master programming languages, participate in competitive coding, and build innovative projects.",
			Incharge:    "Dr. Rajesh Kumar",
			Members:     156,
			Activities:  "Weekly coding sessions, hackathons, tech talks, project showcases",
			Contact:     "coding.club@mitindia.edu",
		},
		{
			Name:        "Robotics Club",
			Description: "Design, build, and program robots. Participate in national robotics competitions.",
			Incharge:    "Prof. Anita Sharma",
			Members:     89,
			Activities:  "Robot building workshops, Arduino sessions, competition prep",
			Contact:     "robotics@mitindia.edu",
		},
		{
			Name:        "Literary Club",
			Description: "Express yourself through poetry, stories, debates, and creative writing workshops.",
			Incharge:    "Dr. Priya Menon",
			Members:     134,
			Activities:  "Poetry slams, book discussions, writing workshops, debates",
			Contact:     "literary@mitindia.edu",
		},
		{
			Name:        "Music Club",
			Description: "Learn instruments, vocal training, form bands, and perform at college events.",
			Incharge:    "Mr. Arjun Nair",
			Members:     178,
			Activities:  "Jam sessions, music festivals, instrument training, performances",
			Contact:     "music@mitindia.edu",
		},
		{
			Name:        "Photography Club",
			Description: "Capture moments, learn techniques, and showcase your work in exhibitions.",
			Incharge:    "Ms. Kavya Iyer",
			Members:     112,
			Activities:  "Photo walks, editing workshops, exhibitions, competitions",
			Contact:     "photography@mitindia.edu",
		},
		{
			Name:        "Drama Club",
			Description: "Act, direct, and produce plays. Develop confidence and stage presence.",
			Incharge:    "Dr. Vikram Singh",
			Members:     95,
			Activities:  "Theater productions, street plays, acting workshops, festivals",
			Contact:     "drama@mitindia.edu",
		},
		{
			Name:        "Environmental Club",
			Description: "Promote sustainability, organize tree plantations, and awareness campaigns.",
			Incharge:    "Prof. Lakshmi Devi",
			Members:     143,
			Activities:  "Tree plantation drives, cleanup campaigns, workshops, awareness programs",
			Contact:     "environment@mitindia.edu",
		},
		{
			Name:        "Dance Club",
			Description: "Learn various dance forms from hip-hop to classical, and perform at events.",
			Incharge:    "Ms. Sneha Reddy",
			Members:     167,
			Activities:  "Dance workshops, choreography sessions, competitions, performances",
			Contact:     "dance@mitindia.edu",
		},
		{
			Name:        "Entrepreneurship Club",
			Description: "Turn ideas into startups. Learn business skills, pitch to investors, and network.",
			Incharge:    "Mr. Karthik Krishnan",
			Members:     121,
			Activities:  "Startup workshops, pitch competitions, mentorship, business seminars",
			Contact:     "entrepreneurship@mitindia.edu",
		},
		{
			Name:        "Sports Club",
			Description: "Stay fit, compete in tournaments, and represent the college in various sports.",
			Incharge:    "Coach Ramesh Patel",
			Members:     203,
			Activities:  "Daily practice sessions, tournaments, fitness training, sports events",
			Contact:     "sports@mitindia.edu",
		},
	}
}
