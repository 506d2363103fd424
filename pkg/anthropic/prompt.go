package anthropic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leafvessel/carecard/pkg/plant"
)

// carePrompt builds the care data prompt for a scientific name. The prompt
// pins down watering categories and a light scale so that output stays
// consistent across plants, and demands a bare JSON object whose error key
// is null on success.
func carePrompt(scientificName string) string {
	return fmt.Sprintf(`You are an expert commercial horticulturist writing care cards for a plant shop. Your goal is to provide practical, safe advice for indoor home environments (USDA Zone 6b) where winters are dark and dry, and root rot is the primary killer of houseplants.

Input Plant: %s

STEP 1: IDENTIFY THE PLANT CATEGORY

Determine which watering category the plant belongs to before generating output.

CATEGORY A - Moisture Lovers (true ferns, Calathea, Maranta, Alocasia, Fittonia, carnivorous plants):
Water instruction: "Keep soil lightly moist. Water when top 1 inch is dry. Never let dry out completely."

CATEGORY B - Moderate (most aroids, Ficus, Schefflera, Aglaonema, Dracaena, Palms, Pilea):
Water instruction: "Allow top 50%% of soil to dry between waterings. Reduce frequency significantly in winter."

CATEGORY C - Semi-Drought Tolerant (Scindapsus, Peperomia, Hoya, Ceropegia):
Water instruction: "Allow soil to dry almost completely between waterings. Very drought tolerant."

CATEGORY D - Drought Tolerant (Sansevieria, ZZ Plant, succulents, cacti):
Water instruction: "Allow soil to dry out completely. Water sparingly, especially in winter (monthly or less)."

CATEGORY E - Specialized Care (orchids, bromeliads, air plants): use the standard soak/cup/mist guidance for the group.

STEP 2: APPLY THESE GUIDELINES

Cultivars: base care on the species; heavily variegated forms need MORE light to hold variegation.
Light: use this scale - "Low light tolerant", "Medium indirect light", "Bright indirect light", "Direct sun tolerant".
Winter in Zone 6b: indoor humidity drops to 20-30%%; mention humidity support where it matters.
Toxicity: you MUST explicitly state one of "Non-toxic to cats and dogs", "Toxic to cats and dogs if ingested. Keep out of reach.", or "Mildly toxic - may cause mouth irritation if chewed." When uncertain, default to "Considered toxic. Keep away from pets and children."

OUTPUT FORMAT

Return ONLY a valid JSON object. No markdown, no code fences, no commentary.

{
  "common_name": "Most recognizable retail name",
  "description": "2-3 sentences. Focus on appearance, growth habit, and what makes it appealing.",
  "light": "Specific guidance using the light scale above.",
  "water": "Strictly follow the category instruction. Include winter note if applicable.",
  "feeding": "Fertilizer guidance, typically monthly during growing season. Reduce or stop in winter.",
  "temperature": "Ideal range in F. Note sensitivity to cold drafts or heating vents if applicable.",
  "humidity": "Specific percentage range. Note if humidity support needed in winter.",
  "toxicity": "MUST state toxicity to cats and dogs explicitly using one of the approved phrases.",
  "error": null
}

If the plant name is invalid or unrecognized, return:
{
  "error": "Plant not recognized. Please check the scientific name."
}`, scientificName)
}

// verifyPrompt builds the feedback verification prompt. Records are rendered
// with their current field values so the model can compare the user's claim
// against what is stored.
func verifyPrompt(feedback string, records []plant.Record, selected string) string {
	var b strings.Builder

	if selected != "" {
		b.WriteString("CURRENT DATA FOR THE SELECTED PLANT:\n")
		for _, r := range records {
			if !strings.EqualFold(r.ScientificName, selected) {
				continue
			}
			writeRecordContext(&b, r)
		}
	} else {
		b.WriteString("CURRENT PLANT DATA IN DATABASE:\n")
		for _, r := range records {
			writeRecordContext(&b, r)
		}
		names := make([]string, 0, len(records))
		for _, r := range records {
			names = append(names, r.ScientificName)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "\nALL PLANTS IN DATABASE (%d total): %s\n", len(names), strings.Join(names, ", "))
	}

	return fmt.Sprintf(`You are an expert horticulturist verifying feedback about plant care information.

%s
USER FEEDBACK:
%s
%s
Your task:
1. Identify which plant(s) and field(s) the user is providing feedback about
2. Verify if the suggested correction is accurate based on authoritative horticultural sources
3. For each correction, determine if you AGREE or DISAGREE with citations

Return ONLY a valid JSON object with this exact structure:
{
  "response_text": "Natural language response. Be conversational but concise.",
  "corrections": [
    {
      "plant": "scientific name",
      "field": "field name (light, water, feeding, temperature, humidity, toxicity, or description)",
      "current_value": "current value in database",
      "suggested_value": "what the user suggests",
      "verification": "agree" or "disagree",
      "reasoning": "Brief explanation",
      "citations": ["Source 1", "Source 2"],
      "recommended_value": "The correct value to use (under 180 characters)"
    }
  ]
}

If the feedback mentions a plant not in the database, say so in response_text and return empty corrections. If the feedback is unclear, ask for clarification in response_text.`,
		b.String(), feedback, selectedNote(selected))
}

func selectedNote(selected string) string {
	if selected == "" {
		return ""
	}
	return fmt.Sprintf("\nNOTE: User has specifically selected plant: %s\n", selected)
}

func writeRecordContext(b *strings.Builder, r plant.Record) {
	fmt.Fprintf(b, "- %s", r.ScientificName)
	if r.CommonName != "" {
		fmt.Fprintf(b, " (%s)", r.CommonName)
	}
	b.WriteString(":\n")
	if r.Description != "" {
		fmt.Fprintf(b, "  description: %s\n", r.Description)
	}
	for _, f := range r.CareFields() {
		if f.Value != "" {
			fmt.Fprintf(b, "  %s: %s\n", f.Name, f.Value)
		}
	}
}
