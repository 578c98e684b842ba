package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mactrack/mactrack/internal/models"
)

func TestUnitCreateDerivesCodeParts(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createTestUser(t, db, "s1@students.mq.edu.au")
	h := NewUnitHandler(db)

	r := jsonRequest(http.MethodPost, "/app/units", `{"unit_code":"comp1010","unit_name":"Intro to Programming"}`, user.ID)
	w := httptest.NewRecorder()
	h.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
	var unit models.Unit
	if err := json.Unmarshal(w.Body.Bytes(), &unit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if unit.UnitCode != "COMP1010" {
		t.Errorf("code = %q, want COMP1010", unit.UnitCode)
	}
	if unit.UnitPrefix != "COMP" || unit.UnitNumber != "1010" {
		t.Errorf("derived parts = %q / %q", unit.UnitPrefix, unit.UnitNumber)
	}
	if unit.UserID != user.ID {
		t.Errorf("unit owned by %d, want %d", unit.UserID, user.ID)
	}
}

func TestUnitCreateDuplicateCodeSameUser(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createTestUser(t, db, "s1@students.mq.edu.au")
	h := NewUnitHandler(db)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		r := jsonRequest(http.MethodPost, "/app/units", `{"unit_code":"COMP1010","unit_name":"Intro"}`, user.ID)
		w := httptest.NewRecorder()
		h.Create(w, r)
		if w.Code != want {
			t.Fatalf("attempt %d: status = %d, want %d", i+1, w.Code, want)
		}
	}
	var count int64
	db.Model(&models.Unit{}).Count(&count)
	if count != 1 {
		t.Errorf("unit rows = %d, want 1", count)
	}
}

func TestUnitCreateSameCodeDifferentUsers(t *testing.T) {
	db := setupHandlerTestDB(t)
	u1 := createTestUser(t, db, "s1@students.mq.edu.au")
	u2 := createTestUser(t, db, "s2@students.mq.edu.au")
	h := NewUnitHandler(db)

	for _, uid := range []uint{u1.ID, u2.ID} {
		r := jsonRequest(http.MethodPost, "/app/units", `{"unit_code":"COMP1010","unit_name":"Intro"}`, uid)
		w := httptest.NewRecorder()
		h.Create(w, r)
		if w.Code != http.StatusCreated {
			t.Fatalf("uid %d: status = %d, want 201", uid, w.Code)
		}
	}
}

func TestUnitCreateRequiresBothFields(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createTestUser(t, db, "s1@students.mq.edu.au")
	h := NewUnitHandler(db)

	r := jsonRequest(http.MethodPost, "/app/units", `{"unit_code":"  ","unit_name":""}`, user.ID)
	w := httptest.NewRecorder()
	h.Create(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUnitDeleteScopedToOwner(t *testing.T) {
	db := setupHandlerTestDB(t)
	owner := createTestUser(t, db, "s1@students.mq.edu.au")
	other := createTestUser(t, db, "s2@students.mq.edu.au")
	unit := models.Unit{UserID: owner.ID, UnitCode: "COMP1010", UnitName: "Intro", UnitPrefix: "COMP", UnitNumber: "1010"}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewUnitHandler(db)
	idStr := strconv.FormatUint(uint64(unit.ID), 10)

	r := jsonRequest(http.MethodPost, "/app/units/"+idStr+"/delete", "", other.ID)
	r.SetPathValue("id", idStr)
	w := httptest.NewRecorder()
	h.Delete(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", w.Code)
	}

	r = jsonRequest(http.MethodPost, "/app/units/"+idStr+"/delete", "", owner.ID)
	r.SetPathValue("id", idStr)
	w = httptest.NewRecorder()
	h.Delete(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete status = %d, want 200", w.Code)
	}
	var count int64
	db.Model(&models.Unit{}).Count(&count)
	if count != 0 {
		t.Errorf("unit rows = %d, want 0", count)
	}
}
