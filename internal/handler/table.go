package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/gateway"
	"github.com/qrdine/qrdine-server/internal/repository"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// TableHandler exposes table generation, the scan/lock/verify flow and
// admin table management.
type TableHandler struct {
	WF     *workflow.Workflow
	Tables *repository.TableRepo
}

func NewTableHandler(wf *workflow.Workflow, t *repository.TableRepo) *TableHandler {
	return &TableHandler{WF: wf, Tables: t}
}

type generateReq struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
	Expr   string   `json:"expr"`
}
type lockReq struct {
	TableNo string `json:"table_no"`
}
type billReq struct {
	TableNo string `json:"table_no"`
}
type renameReq struct {
	NewTableNo string `json:"new_table_no"`
}

// Generate creates tables from an explicit list, a count or a textual
// expression and returns each table's scan URL.  Admin only.
func (h *TableHandler) Generate(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	spec := workflow.GenerateSpec{Tables: req.Tables, Count: req.Count, Expr: req.Expr}
	tables, err := h.WF.GenerateTables(ctx, spec, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"tables": tables})
}

// Lock claims a table session for a customer flow.  Exactly one of two
// concurrent callers wins; the loser gets 409.
func (h *TableHandler) Lock(c echo.Context) error {
	var req lockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_no required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.WF.LockTable(ctx, req.TableNo)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Verify checks a scanned (table, hash) pair.  A mismatch answers 404
// with valid=false rather than an error body, so the scan page can
// render its own message.
func (h *TableHandler) Verify(c echo.Context) error {
	tableNo := c.QueryParam("table")
	hash := c.QueryParam("hash")
	if tableNo == "" || hash == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table and hash required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.WF.VerifyTable(ctx, tableNo, hash)
	if err != nil {
		return domainError(c, err)
	}
	if !res.Valid {
		return c.JSON(http.StatusNotFound, res)
	}
	return c.JSON(http.StatusOK, res)
}

// QR renders the table's scan URL as a PNG for printing.
func (h *TableHandler) QR(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tables.Get(ctx, c.Param("table_no"))
	if err != nil {
		return domainError(c, err)
	}
	png, err := gateway.RenderQR(h.WF.ScanURL(t))
	if err != nil {
		return domainError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// List returns every table with its scan URL.  Admin only.
func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tables, err := h.WF.ListTables(ctx, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// Rename changes a table's number, keeping its hash so printed QR
// codes survive.  Admin only.
func (h *TableHandler) Rename(c echo.Context) error {
	var req renameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.NewTableNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_table_no required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.WF.RenameTable(ctx, c.Param("table_no"), req.NewTableNo, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete hard-removes a table.  Admin only.
func (h *TableHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.WF.DeleteTable(ctx, c.Param("table_no"), actorFrom(c)); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Bill closes out a table: every open order is marked paid in one
// batch and the session is released.  Admin only.
func (h *TableHandler) Bill(c echo.Context) error {
	var req billReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_no required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.WF.BillTable(ctx, req.TableNo, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
