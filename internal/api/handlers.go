package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"texgallery/internal/assets"
	"texgallery/internal/editor"
	"texgallery/internal/modbuilder"
	"texgallery/internal/services"
	"texgallery/internal/session"
	"texgallery/internal/studio"
)

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.studio.Status())
}

func (s *Server) getProgress(c *gin.Context) {
	ev, ok := s.studio.LastProgress()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) listAssets(c *gin.Context) {
	views, err := s.studio.Assets(studio.Filter{
		Type:  c.Query("type"),
		State: c.Query("state"),
		Query: c.Query("q"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": views, "count": len(views)})
}

// assetID builds the asset identity from route params, accepting any casing
// of the type.
func assetID(c *gin.Context) (string, error) {
	t, err := assets.ParseMediaType(c.Param("type"))
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "api", "asset", c.Param("type"), err)
	}
	return assets.MakeID(t, c.Param("folder"), c.Param("filename")), nil
}

func (s *Server) getAsset(c *gin.Context) {
	id, err := assetID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := s.studio.Asset(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getContent(c *gin.Context) {
	id, err := assetID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var (
		content *assets.Content
		source  assets.Source
	)
	if raw := strings.TrimSpace(c.Query("thumb")); raw != "" {
		size, convErr := strconv.Atoi(raw)
		if convErr != nil {
			respondError(c, services.Wrap(services.ErrValidation, "api", "content", "thumb must be an integer", convErr))
			return
		}
		content, source, err = s.studio.Thumbnail(c.Request.Context(), id, size)
	} else {
		content, source, err = s.studio.Content(c.Request.Context(), id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Content-Source", source.String())
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, int64(content.Len()), content.MIME(), content.Reader(), nil)
}

func (s *Server) editAsset(c *gin.Context) {
	id, err := assetID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req editor.Request
	if !bindJSON(c, &req) {
		return
	}
	view, err := s.studio.Edit(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) prefetch(c *gin.Context) {
	c.JSON(http.StatusOK, s.studio.Prefetch(c.Request.Context()))
}

func (s *Server) setSelection(c *gin.Context) {
	var req SelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.studio.Select(req.IDs, req.Selected); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.studio.Status())
}

func (s *Server) clearSelection(c *gin.Context) {
	s.studio.ClearSelection()
	c.Status(http.StatusNoContent)
}

func (s *Server) setMode(c *gin.Context) {
	var req ModeRequest
	if !bindJSON(c, &req) {
		return
	}
	s.studio.SetMultiSelect(req.Enabled)
	c.JSON(http.StatusOK, s.studio.Status())
}

func (s *Server) bulkEdit(c *gin.Context) {
	var req editor.Request
	if !bindJSON(c, &req) {
		return
	}
	report, err := s.studio.Bulk(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FromReport(report))
}

func (s *Server) export(c *gin.Context) {
	modifiedOnly, err := queryBool(c, "modified")
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	result, err := s.studio.Export(c.Request.Context(), &buf, modifiedOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	s.sendArchive(c, s.studio.ExportName(), &buf, len(result.Skipped))
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.studio.Session())
}

func (s *Server) restoreSession(c *gin.Context) {
	doc, err := session.Decode(c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FromApplyReport(s.studio.Restore(doc)))
}

func (s *Server) listGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": s.studio.Groups()})
}

func (s *Server) getGroup(c *gin.Context) {
	g, err := s.studio.Group(c.Param("group"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// groupFile checks that folder/filename belongs to the group named in the
// route.
func (s *Server) groupFile(c *gin.Context) (string, string, error) {
	name, folder, filename := c.Param("group"), c.Param("folder"), c.Param("filename")
	g, err := s.studio.Group(name)
	if err != nil {
		return "", "", err
	}
	if f, ok := g.Has(filename); !ok || f.Folder != folder {
		return "", "", services.Wrap(services.ErrNotFound, "api", "group file",
			fmt.Sprintf("%s/%s not in group %q", folder, filename, name), nil)
	}
	return name, filename, nil
}

func (s *Server) setGroupRecord(c *gin.Context) {
	group, filename, err := s.groupFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req modbuilder.Request
	if !bindJSON(c, &req) {
		return
	}
	if err := s.studio.SetGroupRecord(group, filename, req); err != nil {
		respondError(c, err)
		return
	}
	s.getGroup(c)
}

func (s *Server) clearGroupRecord(c *gin.Context) {
	group, filename, err := s.groupFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.studio.ClearGroupRecord(group, filename); err != nil {
		respondError(c, err)
		return
	}
	s.getGroup(c)
}

func (s *Server) buildPack(c *gin.Context) {
	group := c.Param("group")
	var buf bytes.Buffer
	result, err := s.studio.BuildPack(c.Request.Context(), &buf, group)
	if err != nil {
		respondError(c, err)
		return
	}
	s.sendArchive(c, s.studio.PackName(group), &buf, len(result.Skipped))
}

func (s *Server) sendArchive(c *gin.Context, name string, buf *bytes.Buffer, skipped int) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Archive-Skipped", strconv.Itoa(skipped))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, services.Wrap(services.ErrValidation, "api", "query", key, err)
	}
	return v, nil
}
