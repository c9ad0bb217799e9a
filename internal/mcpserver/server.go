// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes menu editing tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/menushare/internal/catalog"
	"github.com/starford/menushare/internal/imageembed"
	"github.com/starford/menushare/internal/menuservice"
	"github.com/starford/menushare/internal/models"
)

const importFormatURI = "menushare://import-format"

// Server wraps the MCP server with menu tools.
type Server struct {
	mcp *server.MCPServer
	svc *menuservice.Service
}

// New creates a new MCP server with all menu tools registered.
func New(svc *menuservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Menushare",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_menu",
		mcp.WithDescription("Return the whole menu: brand info, categories, items, theme and whether it is read-only."),
		mcp.WithBoolean("sections", mcp.Description("Group items under their categories instead of returning flat lists")),
	), s.getMenu)

	s.mcp.AddTool(mcp.NewTool("set_brand",
		mcp.WithDescription("Update brand info. Only the given fields change. The phone must contain digits only."),
		mcp.WithString("name", mcp.Description("Business name")),
		mcp.WithString("slogan", mcp.Description("Short slogan")),
		mcp.WithString("logo_url", mcp.Description("Logo image URL")),
		mcp.WithString("phone", mcp.Description("WhatsApp number, digits only, with country code")),
		mcp.WithString("currency", mcp.Description("Currency shown next to prices, e.g. SAR")),
	), s.setBrand)

	s.mcp.AddTool(mcp.NewTool("set_theme",
		mcp.WithDescription("Update the menu theme."),
		mcp.WithString("primary_color", mcp.Description("CSS color, e.g. #007bff")),
		mcp.WithString("font_style", mcp.Description("Font family name")),
	), s.setTheme)

	s.mcp.AddTool(mcp.NewTool("add_category",
		mcp.WithDescription("Append a new category at the end of the menu."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
	), s.addCategory)

	s.mcp.AddTool(mcp.NewTool("rename_category",
		mcp.WithDescription("Rename a category."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Category id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
	), s.renameCategory)

	s.mcp.AddTool(mcp.NewTool("remove_category",
		mcp.WithDescription("Delete a category together with all of its items."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Category id")),
	), s.removeCategory)

	s.mcp.AddTool(mcp.NewTool("move_category",
		mcp.WithDescription("Move a category one position up or down."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Category id")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
	), s.moveCategory)

	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Append an item to a category."),
		mcp.WithString("category_id", mcp.Required(), mcp.Description("Category id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
		mcp.WithNumber("price", mcp.Description("Price in the menu currency")),
		mcp.WithString("description", mcp.Description("Short description")),
		mcp.WithString("image", mcp.Description("Image URL")),
	), s.addItem)

	s.mcp.AddTool(mcp.NewTool("update_item",
		mcp.WithDescription("Update an item. Only the given fields change; category_id moves it to another category."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("category_id", mcp.Description("New category id")),
		mcp.WithString("name", mcp.Description("Item name")),
		mcp.WithNumber("price", mcp.Description("Price in the menu currency")),
		mcp.WithString("description", mcp.Description("Short description")),
		mcp.WithString("image", mcp.Description("Image URL")),
	), s.updateItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Delete an item."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	), s.removeItem)

	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move an item one position up or down within its category."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
	), s.moveItem)

	s.mcp.AddTool(mcp.NewTool("set_item_image",
		mcp.WithDescription("Download or decode an image and embed it into an item as a data URI. "+
			"Images are downscaled so the share link stays short."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or data URI of the image")),
	), s.setItemImage)

	s.mcp.AddTool(mcp.NewTool("set_logo",
		mcp.WithDescription("Download or decode an image and embed it as the brand logo."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or data URI of the image")),
	), s.setLogo)

	s.mcp.AddTool(mcp.NewTool("share_link",
		mcp.WithDescription("Encode the current menu into a self-contained share link."),
	), s.shareLink)

	s.mcp.AddTool(mcp.NewTool("open_share_link",
		mcp.WithDescription("Decode a share link (or its #data= fragment) and return the menu it contains. "+
			"Broken links yield the default empty menu."),
		mcp.WithString("link", mcp.Required(), mcp.Description("Share link, #data= fragment or payload")),
	), s.openShareLink)

	s.mcp.AddTool(mcp.NewTool("order_link",
		mcp.WithDescription("Build the WhatsApp order link for an item."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	), s.orderLink)

	s.mcp.AddTool(mcp.NewTool("import_menu",
		mcp.WithDescription("Replace the whole menu with a YAML or JSON document. "+
			"Read the format first via get_import_format or the "+importFormatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Menu document")),
		mcp.WithString("format", mcp.Enum("yaml", "json"), mcp.Description("Document format, defaults to yaml")),
	), s.importMenu)

	s.mcp.AddTool(mcp.NewTool("get_import_format",
		mcp.WithDescription("Returns the menu import format."),
	), s.getImportFormat)

	// Resource: import format.
	s.mcp.AddResource(
		mcp.NewResource(importFormatURI, "Menu Import Format",
			mcp.WithResourceDescription("YAML, JSON and XLSX layouts accepted when importing a menu."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readImportFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// optString returns the argument and whether it was given at all.
func optString(req mcp.CallToolRequest, key string) (*string, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a string", key)
	}
	return &s, nil
}

// optPrice accepts a number or numeric text.
func optPrice(req mcp.CallToolRequest) (*models.Price, error) {
	v, ok := req.GetArguments()["price"]
	if !ok || v == nil {
		return nil, nil
	}
	var p models.Price
	switch x := v.(type) {
	case float64:
		p = models.Price(x)
	case string:
		p = models.ParsePrice(x)
	default:
		return nil, fmt.Errorf("argument %q must be a number", "price")
	}
	return &p, nil
}

func (s *Server) getMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("sections", false) {
		return jsonResult(s.svc.Sections(ctx))
	}
	m, err := s.svc.GetMenu(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) setBrand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		p   models.BrandPatch
		err error
	)
	for key, dst := range map[string]**string{
		"name":     &p.Name,
		"slogan":   &p.Slogan,
		"logo_url": &p.LogoURL,
		"phone":    &p.Phone,
		"currency": &p.Currency,
	} {
		if *dst, err = optString(req, key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if p.Phone != nil && !models.DigitsOnly(*p.Phone) {
		return mcp.NewToolResultError("phone must contain digits only"), nil
	}
	if p.LogoURL != nil {
		kind := models.ImageKindURL
		p.LogoType = &kind
	}
	b, err := s.svc.SetBrand(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(b)
}

func (s *Server) setTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		p   models.ThemePatch
		err error
	)
	if p.PrimaryColor, err = optString(req, "primary_color"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if p.FontStyle, err = optString(req, "font_style"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.SetTheme(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) addCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.AddCategory(ctx, strings.TrimSpace(name))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func (s *Server) renameCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.UpdateCategory(ctx, id, models.CategoryPatch{Name: &name})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func (s *Server) removeCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RemoveCategory(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed category: %s", id)), nil
}

func (s *Server) moveCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.MoveCategory(ctx, id, models.Direction(dir)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Store().State().Categories)
}

func (s *Server) addItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categoryID, err := req.RequireString("category_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	price, err := optPrice(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := models.ItemFields{
		Name:        strings.TrimSpace(name),
		Description: req.GetString("description", ""),
		Image:       req.GetString("image", ""),
	}
	if price != nil {
		f.Price = *price
	}
	it, err := s.svc.AddItem(ctx, categoryID, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) updateItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var p models.ItemPatch
	for key, dst := range map[string]**string{
		"category_id": &p.CategoryID,
		"name":        &p.Name,
		"description": &p.Description,
		"image":       &p.Image,
	} {
		if *dst, err = optString(req, key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if p.Price, err = optPrice(req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if p.Image != nil {
		kind := imageembed.KindOf(*p.Image)
		p.ImageType = &kind
	}
	it, err := s.svc.UpdateItem(ctx, id, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) removeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RemoveItem(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed item: %s", id)), nil
}

func (s *Server) moveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.MoveItem(ctx, id, models.Direction(dir)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, _ := s.svc.Store().Item(id)
	return jsonResult(s.svc.Store().ItemsInCategory(it.CategoryID))
}

func (s *Server) shareLink(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := s.svc.Share(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(link)
}

func (s *Server) openShareLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := req.RequireString("link")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.Contains(link, "data=") {
		link = "#data=" + link
	}
	return jsonResult(s.svc.View(ctx, link))
}

func (s *Server) orderLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	u, err := s.svc.OrderLink(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(u), nil
}

func (s *Server) importMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := catalog.FormatYAML
	if req.GetString("format", "") == "json" {
		format = catalog.FormatJSON
	}
	st, err := s.svc.Import(ctx, []byte(content), format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("imported %d categories and %d items", len(st.Categories), len(st.Items))), nil
}

func (s *Server) getImportFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ImportFormatContract), nil
}

func (s *Server) readImportFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      importFormatURI,
			MIMEType: "text/markdown",
			Text:     ImportFormatContract,
		},
	}, nil
}
