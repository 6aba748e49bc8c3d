package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// --- Collections ---

func (s *server) createCollection(w http.ResponseWriter, r *http.Request) {
	var in types.Collection
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.registry.CreateCollection(r.Context(), tenant(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusCreated, c)
}

func (s *server) listCollections(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.registry.ListCollections(r.Context(), tenant(r), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writePage(w, s.log, p)
}

func (s *server) getCollection(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.GetCollectionByID(r.Context(), tenant(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, c)
}

func (s *server) getCollectionByHandle(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.GetCollectionByHandle(r.Context(), tenant(r), chi.URLParam(r, "handle"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, c)
}

func (s *server) updateCollection(w http.ResponseWriter, r *http.Request) {
	var in types.Collection
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.registry.UpdateCollection(r.Context(), tenant(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, c)
}

// --- Schemas ---

func (s *server) createSchema(w http.ResponseWriter, r *http.Request) {
	var in types.Schema
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	sc, err := s.registry.Create(r.Context(), tenant(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusCreated, sc)
}

func (s *server) listSchemas(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.registry.List(r.Context(), tenant(r), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writePage(w, s.log, p)
}

func (s *server) getSchema(w http.ResponseWriter, r *http.Request) {
	sc, err := s.registry.GetByID(r.Context(), tenant(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, sc)
}

func (s *server) getSchemaByHandle(w http.ResponseWriter, r *http.Request) {
	sc, err := s.registry.GetByHandle(r.Context(), tenant(r), chi.URLParam(r, "handle"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, sc)
}

func (s *server) updateSchema(w http.ResponseWriter, r *http.Request) {
	var in types.Schema
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	sc, err := s.registry.UpdateByID(r.Context(), tenant(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, sc)
}

func (s *server) deleteSchema(w http.ResponseWriter, r *http.Request) {
	sc, err := s.registry.DeleteByID(r.Context(), tenant(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, sc)
}

// --- Objects ---

func (s *server) objectInput(w http.ResponseWriter, r *http.Request) (types.ObjectInput, error) {
	body, err := readBody(w, r)
	if err != nil {
		return types.ObjectInput{}, err
	}
	return types.ParseObjectInput(body)
}

func (s *server) createObject(w http.ResponseWriter, r *http.Request) {
	in, err := s.objectInput(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	o, err := s.objects.Create(r.Context(), tenant(r), objectMeta(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusCreated, o)
}

func (s *server) listObjects(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.objects.GetList(r.Context(), tenant(r), objectMeta(r), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writePage(w, s.log, p)
}

func (s *server) getObject(w http.ResponseWriter, r *http.Request) {
	env, err := s.objects.GetByID(r.Context(), tenant(r), objectMeta(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, env)
}

func (s *server) getObjectByHandle(w http.ResponseWriter, r *http.Request) {
	env, err := s.objects.GetByHandle(r.Context(), tenant(r), objectMeta(r), chi.URLParam(r, "handle"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, env)
}

func (s *server) updateObject(w http.ResponseWriter, r *http.Request) {
	in, err := s.objectInput(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	env, err := s.objects.UpdateByID(r.Context(), tenant(r), objectMeta(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, env)
}

func (s *server) deleteObject(w http.ResponseWriter, r *http.Request) {
	env, err := s.objects.DeleteByID(r.Context(), tenant(r), objectMeta(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, env)
}

func (s *server) form(w http.ResponseWriter, r *http.Request) {
	form, err := s.objects.Form(r.Context(), tenant(r), objectMeta(r), r.URL.Query().Get("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, s.log, http.StatusOK, form)
}
