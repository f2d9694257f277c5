package analysis

import "strings"

// Intent classifies a message in which no symptom was recognised.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentThanks   Intent = "thanks"
	IntentHelp     Intent = "help"
	IntentUnknown  Intent = "unknown"
)

// intentKeywords is checked in order; the first category with a substring
// hit wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentThanks, []string{"thank", "thanks", "appreciate"}},
	{IntentHelp, []string{"help", "what can you do", "how does this work"}},
}

var generalReplies = map[Intent]string{
	IntentGreeting: "Hello! I'm here to help you assess your symptoms and provide preliminary information about " +
		"potential infectious diseases. Please describe any symptoms you're experiencing.",
	IntentThanks: "You're welcome! I'm here to help. Remember, this is for informational purposes only and " +
		"should not replace professional medical advice.",
	IntentHelp: "I can help you by:\n• Analyzing your symptoms\n• Providing preliminary disease predictions\n" +
		"• Offering general health recommendations\n• Identifying when to seek medical attention\n\n" +
		"Please describe your symptoms to get started.",
	IntentUnknown: "I'm here to help with symptom analysis and disease prediction. Please describe any symptoms " +
		"you're experiencing, such as fever, cough, fatigue, or any other health concerns.",
}

func ClassifyIntent(message string) Intent {
	msg := normalize(message)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(msg, kw) {
				return group.intent
			}
		}
	}
	return IntentUnknown
}

// ComposeGeneral answers a message that carried no recognisable symptom.
func ComposeGeneral(message string) string {
	return GeneralReply(ClassifyIntent(message))
}

func GeneralReply(intent Intent) string {
	if reply, ok := generalReplies[intent]; ok {
		return reply
	}
	return generalReplies[IntentUnknown]
}
