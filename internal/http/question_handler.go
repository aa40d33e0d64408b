package api

import (
	"encoding/json"
	"net/http"

	"pollsite/internal/domain/question"
	"pollsite/internal/platform/apperr"
	"pollsite/internal/worker"
)

type latestQuestionsResponse struct {
	LatestQuestionList []question.Question `json:"latest_question_list"`
}

type questionDetailResponse struct {
	Question *question.Question `json:"question"`
	Choices  []question.Choice  `json:"choices"`
}

type voteRequest struct {
	ChoiceID int64 `json:"choice_id"`
}

// @Summary     Latest published questions
// @Tags        questions
// @Produce     json
// @Success     200  {object}  latestQuestionsResponse
// @Router      /api/v1/questions [get]
func (h *Handler) handleLatestQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.questionSvc.Latest(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, latestQuestionsResponse{LatestQuestionList: qs})
}

// @Summary     Question detail
// @Tags        questions
// @Produce     json
// @Param       id   path      int64  true  "Question ID"
// @Success     200  {object}  questionDetailResponse
// @Failure     404  {object}  map[string]string  "missing or not yet published"
// @Router      /api/v1/questions/{id} [get]
func (h *Handler) handleQuestionDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.NotFound("question_not_found", "question not found", err))
		return
	}

	q, choices, err := h.questionSvc.Detail(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionDetailResponse{Question: q, Choices: choices})
}

// @Summary     Question results
// @Tags        questions
// @Produce     json
// @Param       id   path      int64  true  "Question ID"
// @Success     200  {object}  question.Results
// @Failure     404  {object}  map[string]string  "missing or not yet published"
// @Router      /api/v1/questions/{id}/results [get]
func (h *Handler) handleQuestionResults(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.NotFound("question_not_found", "question not found", err))
		return
	}

	res, err := h.questionSvc.Results(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary     Vote for a choice
// @Tags        questions
// @Accept      json
// @Param       id       path      int64        true  "Question ID"
// @Param       request  body      voteRequest  true  "Vote payload"
// @Success     204
// @Failure     400      {object}  map[string]string  "no choice selected"
// @Failure     404      {object}  map[string]string  "missing or not yet published"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/questions/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.NotFound("question_not_found", "question not found", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.questionSvc.Vote(r.Context(), id, req.ChoiceID); err != nil {
		errorResponse(w, err)
		return
	}

	worker.Publish(h.voteCh, worker.VoteEvent{QuestionID: id, ChoiceID: req.ChoiceID})

	w.WriteHeader(http.StatusNoContent)
}
