package advisor

import "fmt"

const systemTemplate = "You are an expert race engineer for the Assetto Corsa Competizione (ACC) simulator. " +
	"Your task is to generate a complete and competitive race setup. " +
	"Provide all values as numbers, without units, and respond only with the JSON object matching the provided schema. " +
	"The setup should be a good, well-balanced starting point for a %d-minute race. " +
	"Ensure the 'summary' field is in %s."

func systemInstruction(cfg Config) string {
	return fmt.Sprintf(systemTemplate, cfg.RaceMinutes, cfg.Language)
}

func initialPrompt(sel Selection) string {
	return fmt.Sprintf("Generate a setup for the following criteria:\n- Car: %s\n- Track: %s\n- Driving Style: %s",
		sel.Car, sel.Track, sel.Style)
}

func refinePrompt(feedback string) string {
	return fmt.Sprintf("The user's feedback on the current setup is: \"%s\". "+
		"Please fine-tune the setup based on this feedback and return the complete, updated setup in the same JSON format.",
		feedback)
}
