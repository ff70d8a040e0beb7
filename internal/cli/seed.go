package cli

import "category-quiz-service/internal/domain"

// sampleQuestions seeds an empty question bank; replace with real content via the questions table.
func sampleQuestions() []domain.Question {
	q := func(id string, c domain.Category, prompt, a, b, cc, d, correct string) domain.Question {
		return domain.Question{ID: id, Category: c, Prompt: prompt, Options: [4]string{a, b, cc, d}, Correct: correct}
	}
	return []domain.Question{
		q("geo-1", domain.Geography, "What is the capital of Croatia?", "Split", "Zagreb", "Rijeka", "Osijek", "b"),
		q("geo-2", domain.Geography, "Which is the longest river in Europe?", "Danube", "Rhine", "Volga", "Sava", "c"),
		q("geo-3", domain.Geography, "How many continents are there?", "5", "6", "8", "7", "d"),
		q("his-1", domain.History, "In which year did World War II end?", "1945", "1939", "1918", "1950", "a"),
		q("his-2", domain.History, "Who was the first emperor of Rome?", "Nero", "Caesar", "Augustus", "Trajan", "c"),
		q("his-3", domain.History, "Which wall fell in 1989?", "Hadrian's Wall", "Berlin Wall", "Great Wall", "Western Wall", "b"),
		q("spo-1", domain.Sport, "How many players does a football team field?", "10", "11", "12", "9", "b"),
		q("spo-2", domain.Sport, "How many grand slam tennis tournaments are there each year?", "3", "5", "4", "2", "c"),
		q("spo-3", domain.Sport, "How many rings are on the Olympic flag?", "5", "6", "4", "7", "a"),
		q("mov-1", domain.Movies, "Who directed Jaws?", "George Lucas", "Steven Spielberg", "Ridley Scott", "James Cameron", "b"),
		q("mov-2", domain.Movies, "Which film won the first Academy Award for Best Picture?", "Wings", "Sunrise", "Metropolis", "Casablanca", "a"),
		q("mov-3", domain.Movies, "What is the name of the hobbit played by Elijah Wood?", "Sam", "Pippin", "Merry", "Frodo", "d"),
		q("mus-1", domain.Music, "How many strings does a standard guitar have?", "4", "5", "6", "7", "c"),
		q("mus-2", domain.Music, "Which composer wrote the Four Seasons?", "Vivaldi", "Bach", "Mozart", "Haydn", "a"),
		q("mus-3", domain.Music, "Which band released Abbey Road?", "The Rolling Stones", "Queen", "Pink Floyd", "The Beatles", "d"),
		q("inf-1", domain.Informatics, "How many bits are in a byte?", "4", "8", "16", "32", "b"),
		q("inf-2", domain.Informatics, "What does CPU stand for?", "Central Processing Unit", "Computer Power Unit", "Core Program Utility", "Central Peripheral Unit", "a"),
		q("inf-3", domain.Informatics, "Which data structure is first-in first-out?", "Stack", "Tree", "Queue", "Graph", "c"),
	}
}
