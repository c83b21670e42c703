package recommendation

// template is a reusable recommendation blueprint for one emotion.
type template struct {
	Type         Type
	Title        string
	Description  string
	Instructions string
	Duration     int
}

// catalog maps target emotion to its available templates. "general" serves
// as the fallback bucket when no strong emotion stands out.
var catalog = map[string][]template{
	"sadness": {
		{
			Type:        TypeBreathingExercise,
			Title:       "4-7-8 Breathing for Emotional Balance",
			Description: "A calming breathing technique to help process sadness and find emotional balance.",
			Instructions: "1. Sit comfortably and close your eyes\n2. Inhale through your nose for 4 counts\n" +
				"3. Hold your breath for 7 counts\n4. Exhale through your mouth for 8 counts\n5. Repeat 4-6 times\n\n" +
				"Focus on the rhythm and let each exhale release tension.",
			Duration: 10,
		},
		{
			Type:        TypeJournalingPrompt,
			Title:       "Exploring Your Feelings",
			Description: "A gentle journaling exercise to help you process and understand your sadness.",
			Instructions: "Take 15-20 minutes to write about:\n\n1. What am I feeling right now, and where do I feel it in my body?\n" +
				"2. What might have triggered these feelings?\n3. What would I say to a friend experiencing the same thing?\n" +
				"4. What small act of kindness can I show myself today?\n\nWrite freely without judgment.",
			Duration: 20,
		},
		{
			Type:        TypeMindfulnessPractice,
			Title:       "Loving-Kindness Meditation",
			Description: "A meditation practice to cultivate self-compassion during difficult times.",
			Instructions: "1. Sit quietly and close your eyes\n2. Place your hand on your heart\n3. Repeat these phrases silently:\n" +
				"   - 'May I be kind to myself'\n   - 'May I give myself the compassion I need'\n" +
				"   - 'May I be strong and patient'\n   - 'May I accept this moment as it is'\n4. Continue for 10-15 minutes",
			Duration: 15,
		},
	},
	"anger": {
		{
			Type:        TypeBreathingExercise,
			Title:       "Box Breathing for Anger Management",
			Description: "A structured breathing technique to help calm intense anger and regain control.",
			Instructions: "1. Sit or stand with your back straight\n2. Inhale for 4 counts\n3. Hold for 4 counts\n" +
				"4. Exhale for 4 counts\n5. Hold empty for 4 counts\n6. Repeat 8-10 times\n\n" +
				"Visualize drawing a box with each breath cycle.",
			Duration: 8,
		},
		{
			Type:        TypePhysicalActivity,
			Title:       "Anger Release Movement",
			Description: "Physical exercises to help channel and release angry energy constructively.",
			Instructions: "Choose one or more:\n\n1. Vigorous walking for 10-15 minutes\n2. Push-ups or jumping jacks (30 seconds, 3 sets)\n" +
				"3. Punch a pillow or punching bag\n4. Intense stretching or yoga poses\n5. Dance to energetic music\n\n" +
				"Focus on releasing the energy, not the anger itself.",
			Duration: 15,
		},
		{
			Type:        TypeCognitiveReframing,
			Title:       "Anger Thought Challenge",
			Description: "A cognitive exercise to examine and reframe angry thoughts.",
			Instructions: "1. Write down the situation that made you angry\n2. List your immediate thoughts about it\n3. Ask yourself:\n" +
				"   - Is this thought completely true?\n   - What evidence supports/contradicts it?\n" +
				"   - How might someone else see this?\n   - What would I tell a friend in this situation?\n" +
				"4. Write a more balanced perspective",
			Duration: 15,
		},
	},
	"fear": {
		{
			Type:        TypeBreathingExercise,
			Title:       "Grounding Breath for Anxiety",
			Description: "A calming breathing technique to reduce fear and anxiety.",
			Instructions: "1. Place one hand on chest, one on belly\n2. Breathe slowly through your nose\n" +
				"3. Feel your belly rise more than your chest\n4. Exhale slowly through pursed lips\n" +
				"5. Count: 'In-2-3-4, Out-2-3-4-5-6'\n6. Continue for 5-10 minutes\n\nFocus on the sensation of breathing.",
			Duration: 10,
		},
		{
			Type:        TypeMindfulnessPractice,
			Title:       "5-4-3-2-1 Grounding Technique",
			Description: "A mindfulness exercise to ground yourself when feeling anxious or fearful.",
			Instructions: "Notice and name:\n\n5 things you can SEE around you\n4 things you can TOUCH\n3 things you can HEAR\n" +
				"2 things you can SMELL\n1 thing you can TASTE\n\nTake your time with each sense. " +
				"This brings you back to the present moment.",
			Duration: 10,
		},
	},
	"general": {
		{
			Type:        TypeRelaxationTechnique,
			Title:       "Progressive Muscle Relaxation",
			Description: "A full-body relaxation technique to release physical and emotional tension.",
			Instructions: "1. Lie down comfortably\n2. Starting with your toes, tense each muscle group for 5 seconds\n" +
				"3. Release and notice the relaxation\n4. Move up: feet, calves, thighs, abdomen, hands, arms, shoulders, face\n" +
				"5. End with 2 minutes of deep breathing\n\nFocus on the contrast between tension and relaxation.",
			Duration: 20,
		},
	},
}
