package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"app/middleware"
	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const insightsModel = "gemini-2.5-flash-lite"

// MonthlyInsights asks Gemini for a short analysis of the month's report.
// GET /api/bills/monthly/insights?month=MM&year=YYYY
func (h *ReportHandler) MonthlyInsights(c *fiber.Ctx) error {
	if h.Cfg.GeminiAPIKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "AI service not configured"})
	}

	userID := middleware.UserID(c)
	month, year := monthYearFromQuery(c)

	data, err := h.computeMonthly(c, userID, month, year)
	if err != nil {
		logrus.Errorf("Error computing report for insights: %v", err)
		return storeError(c, err, "Report")
	}

	client, err := genai.NewClient(c.Context(), option.WithAPIKey(h.Cfg.GeminiAPIKey))
	if err != nil {
		logrus.Errorf("Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Failed to connect to AI service"})
	}
	defer client.Close()

	model := client.GenerativeModel(insightsModel)
	resp, err := model.GenerateContent(c.Context(), genai.Text(buildInsightsPrompt(data)))
	if err != nil {
		logrus.Errorf("Error from Gemini API: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Failed to generate insights"})
	}

	insights, err := parseInsights(resp)
	if err != nil {
		logrus.Errorf("Error parsing Gemini response: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Failed to parse AI response"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"month":    month,
		"year":     year,
		"insights": insights,
	}})
}

type reportInsights struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Cautions   []string `json:"cautions"`
}

func buildInsightsPrompt(data models.ReportData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Month %d/%d: revenue %s across %d bills.\n", data.Month, data.Year, data.TotalRevenue.StringFixed(2), data.TotalBills)

	sb.WriteString("Top products:\n")
	for i, p := range data.Products {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s: %d sold, revenue %s\n", p.Name, p.QtySold, p.Revenue.StringFixed(2))
	}

	sb.WriteString("Daily revenue:\n")
	for _, d := range data.Daily {
		if d.TotalBills == 0 {
			continue
		}
		fmt.Fprintf(&sb, "- day %d: %s over %d bills\n", d.Day, d.TotalRevenue.StringFixed(2), d.TotalBills)
	}

	jsonFormat := `{"summary":"string","highlights":["string",...],"cautions":["string",...]}`

	return fmt.Sprintf(`You are a retail data analyst for a small electricals shop.
Analyze the monthly sales data below and respond with a single, minified JSON
object using this exact structure, with no markdown or surrounding text:

%s

Sales data:
%s`, jsonFormat, sb.String())
}

// extractJSON trims any chatter around the JSON object in a model response.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

func parseInsights(resp *genai.GenerateContentResponse) (*reportInsights, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content received from AI")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}

	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in AI response")
	}

	var insights reportInsights
	if err := json.Unmarshal([]byte(jsonStr), &insights); err != nil {
		return nil, fmt.Errorf("decode AI response: %w", err)
	}
	return &insights, nil
}
